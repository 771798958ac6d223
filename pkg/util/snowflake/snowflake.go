// Package snowflake 生成全局唯一的雪花 ID
package snowflake

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

var (
	node     *snowflake.Node
	nodeOnce sync.Once
)

// Init 初始化雪花算法节点
// 应在程序启动时调用一次，未调用时首次生成 ID 会以节点 1 初始化
func Init(machineID int64) {
	nodeOnce.Do(func() {
		if machineID < 0 || machineID > 1023 {
			zap.L().Warn("雪花算法节点 ID 不合法，使用默认值 1", zap.Int64("machineID", machineID))
			machineID = 1
		}
		var err error
		node, err = snowflake.NewNode(machineID)
		if err != nil {
			zap.L().Fatal("雪花算法节点初始化失败", zap.Error(err))
		}
		zap.L().Info("雪花算法节点初始化成功", zap.Int64("machineID", machineID))
	})
}

// GenerateID 生成雪花 ID (int64)
func GenerateID() int64 {
	Init(1)
	return node.Generate().Int64()
}

// GenerateIDString 生成雪花 ID (string)
// 用于 JSON 序列化，避免 JavaScript 精度丢失
func GenerateIDString() string {
	Init(1)
	return node.Generate().String()
}

// GenerateUuid 生成带业务前缀的 ID，如 "R1790123456789012345"
func GenerateUuid(prefix string) string {
	return prefix + GenerateIDString()
}
