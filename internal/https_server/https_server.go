// Package https_server 提供 HTTP/HTTPS 服务器的初始化和配置
// 负责创建 Gin 引擎实例并配置中间件、静态资源和路由
package https_server

import (
	"class_chat_server/internal/config"
	"class_chat_server/internal/handler"
	"class_chat_server/internal/infrastructure/logger"
	"class_chat_server/internal/infrastructure/middleware"
	"class_chat_server/internal/router"
	"class_chat_server/internal/service"
	"class_chat_server/pkg/constants"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Init 初始化 HTTP/HTTPS 服务器并返回 Gin 引擎实例
// 配置顺序：
//  1. 创建空白 Gin 引擎
//  2. 注册日志和恢复中间件
//  3. 配置 CORS 跨域规则，按需开启 TLS 重定向
//  4. 映射上传附件目录
//  5. 注册业务路由
func Init(conf *config.Config, svc *service.Services) *gin.Engine {
	engine := gin.New()

	engine.Use(logger.GinLogger(constants.STATIC_FILE_URL_PREFIX))
	engine.Use(logger.GinRecovery(true))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // 生产环境应指定具体域名
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	// 由 Nginx 处理 SSL 时关闭
	if conf.TlsRedirect {
		engine.Use(middleware.TlsHandler(conf.MainConfig.Host, conf.MainConfig.Port))
	}

	engine.Static(constants.STATIC_FILE_URL_PREFIX, conf.StaticFilePath)

	rt := router.NewRouter(handler.NewHandlers(svc), svc.Access)
	rt.RegisterRoutes(engine)

	return engine
}
