// Command adduser 在没有管理后台的情况下创建账号（例如第一个 ADMIN）。
//
//	adduser -phone 901234567 -role ADMIN -name "Admin"
//
// 未提供 -password 时从终端读取。
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"maktab/backend/config"
	"maktab/backend/internal/repository"
	"maktab/backend/internal/service"
	"maktab/backend/pkg/database"
	applogger "maktab/backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("SCHOOL_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	cli := commandLine{
		userSvc: service.NewUserService(repository.NewRepository(db), logger),
		out:     os.Stdout,
	}
	if err := cli.run(os.Args[1:]); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\n错误: %v\n", err)
		}
		os.Exit(1)
	}
}
