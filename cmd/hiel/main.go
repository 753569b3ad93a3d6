package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	flag "github.com/spf13/pflag"

	"hiel/internal/config"
	"hiel/internal/server"
)

var (
	port         = flag.Int("port", 0, "服务端口 (覆盖配置文件)")
	devMode      = flag.Bool("dev", false, "开发模式")
	allowedRoots = flag.StringSlice("allowed-roots", nil, "允许访问的根目录 (覆盖配置文件)")
	historyDB    = flag.String("history-db", "", "操作历史数据库路径 (覆盖配置文件)")
)

func main() {
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("  Hiel - Excel 表格操作服务")
	fmt.Println("==========================================")

	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("加载配置失败，使用默认配置: %v", err)
		cfg = config.DefaultConfig()
	}

	// 命令行参数覆盖配置
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if len(*allowedRoots) > 0 {
		cfg.Files.AllowedRoots = *allowedRoots
	}
	if *historyDB != "" {
		cfg.History.DBPath = *historyDB
	}

	fmt.Printf("允许访问的目录: %s\n", strings.Join(cfg.Files.AllowedRoots, ", "))

	// 创建服务器
	srv := server.NewServer(cfg)
	defer srv.Close()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	// 启动服务器
	go func() {
		fmt.Printf("服务启动中，监听端口 %d ...\n", cfg.Server.Port)
		if err := srv.Run(addr); err != nil {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	fmt.Println("\n按 Ctrl+C 停止服务...")

	// 等待信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n正在关闭服务...")
}
