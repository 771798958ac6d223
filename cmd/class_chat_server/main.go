package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"class_chat_server/internal/config"
	dao "class_chat_server/internal/dao/mysql"
	myredis "class_chat_server/internal/dao/redis"
	"class_chat_server/internal/handler"
	"class_chat_server/internal/https_server"
	"class_chat_server/internal/infrastructure/logger"
	"class_chat_server/internal/service"
	"class_chat_server/internal/service/chat"
	"class_chat_server/pkg/util/jwt"
	"class_chat_server/pkg/util/snowflake"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer func() { _ = zap.L().Sync() }()
	zap.L().Info("日志初始化成功")
	if conf.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 3. 初始化 ID 生成与 JWT
	snowflake.Init(conf.MachineID)
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry)
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("初始化参数校验翻译器失败", zap.Error(err))
	}

	// 4. 初始化数据库
	repos := dao.Init(conf)

	// 5. 初始化 Redis 缓存
	cache, err := myredis.Init(conf.RedisConfig)
	if err != nil {
		zap.L().Fatal("Redis 初始化失败", zap.Error(err))
	}
	zap.L().Info("缓存初始化成功")

	// 6. 初始化 ChatServer，注册表随服务器创建、随关闭清空
	chatServer, err := chat.NewChatServer(conf.KafkaConfig, cache.Client())
	if err != nil {
		zap.L().Fatal("ChatServer 初始化失败", zap.Error(err))
	}
	chatServer.Start()

	// 7. 初始化 Service 层与 HTTP 服务器
	svc := service.NewServices(repos, cache, chatServer, conf)
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler: https_server.Init(conf, svc),
	}
	go func() {
		zap.L().Info("服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Error("HTTP 服务关闭失败", zap.Error(err))
	}
	// 已升级的 WebSocket 不受 Shutdown 管理，由 Registry.Clear 关闭
	chatServer.Close()
	cache.Close()

	zap.L().Info("服务器已关闭")
}
