package constants

const (
	CHANNEL_SIZE             = 100              // 通道大小
	FILE_MAX_SIZE            = 20 << 20         // 上传文件最大大小（字节）
	REDIS_TIMEOUT            = 60               // 聊天室缓存有效期（分钟）
	MAX_CONNECTIONS_PER_USER = 5                // 单用户最大 WebSocket 连接数
	HISTORY_DEFAULT_LIMIT    = 50               // 历史消息默认分页大小
	HISTORY_MAX_LIMIT        = 100              // 历史消息最大分页大小
	CACHE_WORKER_NUM         = 15               // 异步任务 Worker 数量
	CACHE_TASK_BUFFER        = 3000             // 异步任务缓冲区大小
	STATIC_FILE_URL_PREFIX   = "/static/files/" // 上传文件访问前缀
)

// Redis 键前缀
const (
	ROOM_CACHE_PREFIX   = "chat_room_"        // 班级 -> 聊天室 缓存
	ONLINE_USERS_KEY    = "chat_online_users" // 在线用户集合
	UNREAD_PREFIX       = "chat_unread_"      // 用户未读班级集合
	REDIS_BROADCAST_KEY = "chat:broadcast"    // Redis 广播频道
)
