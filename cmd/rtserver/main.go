// Package main 提供 rtserver 命令行入口
//
// rtserver 同时运行两个监听器：
//   - WebTransport（UDP，默认 :4433）：对双向流、单向流和数据报回复 ACK
//   - HTTP（TCP，默认 127.0.0.1:8080）：/ws 回显、/metrics、/healthz
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	rtlink "github.com/hudwiz/go-rtlink"
	"github.com/hudwiz/go-rtlink/config"
	"github.com/hudwiz/go-rtlink/internal/app"
	"github.com/hudwiz/go-rtlink/pkg/lib/log"
)

var logger = log.Logger("cmd/rtserver")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
//
// 命令行参数用于本次运行的覆盖，持久配置放在 JSON 配置文件中。
// 优先级：命令行参数 > 环境变量 > 配置文件 > 默认值。
//
// ═══════════════════════════════════════════════════════════════════════════
var (
	configFile = flag.String("config", "", "配置文件路径（JSON）")
	wtAddr     = flag.String("wt-addr", "", "WebTransport UDP 监听地址（默认 :4433）")
	httpAddr   = flag.String("http-addr", "", "HTTP 监听地址（默认 127.0.0.1:8080）")
	certFile   = flag.String("cert", "", "PEM 证书文件（与 -key 同时使用）")
	keyFile    = flag.String("key", "", "PEM 私钥文件")
	writeCert  = flag.String("write-cert", "", "将使用的证书与私钥写入该目录（cert.pem / key.pem）")
	noWT       = flag.Bool("no-webtransport", false, "只启动 HTTP 监听器")

	logLevel  = flag.String("log-level", "", "日志级别，例如 info 或 server/mux=debug,info")
	logFormat = flag.String("log-format", "", "日志格式 text 或 json")
	verbose   = flag.Bool("verbose", false, "输出依赖注入事件日志")

	showVersion = flag.Bool("version", false, "显示版本信息")
	showHelp    = flag.Bool("help", false, "显示帮助信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		printVersion()
		return nil
	}
	if *showHelp {
		printHelp()
		return nil
	}

	cfg, err := buildConfig()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	fmt.Printf("📦 %s\n", rtlink.VersionInfo())
	logger.Info("启动 rtserver", "version", rtlink.Version, "commit", rtlink.GitCommit, "buildDate", rtlink.BuildDate)

	a, err := app.RunApp(context.Background(), app.NewBootstrap(cfg, app.WithVerbose(*verbose)))
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}

	rt := a.Runtime()
	if *writeCert != "" {
		if err := writeIdentity(rt, *writeCert); err != nil {
			_ = a.Stop()
			return err
		}
	}

	printServerInfo(cfg, rt)
	fmt.Println("服务已启动，按 Ctrl+C 退出")
	a.Wait()
	return nil
}

// buildConfig 依次应用配置文件、环境变量与命令行参数
func buildConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if *configFile != "" {
		loaded, err := config.LoadFile(*configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	if *wtAddr != "" {
		cfg.Server = cfg.Server.WithWebTransportAddr(*wtAddr)
	}
	if *httpAddr != "" {
		cfg.Server = cfg.Server.WithHTTPAddr(*httpAddr)
	}
	if *certFile != "" || *keyFile != "" {
		cfg.Server = cfg.Server.WithCertificate(*certFile, *keyFile)
	}
	if *noWT {
		cfg.Server.WebTransport.Enable = false
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}

	return cfg, cfg.Validate()
}

// writeIdentity 导出证书，供客户端以 CA 文件方式信任
func writeIdentity(rt *app.Runtime, dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("创建证书目录失败: %w", err)
	}
	certPath := filepath.Join(dir, "cert.pem")
	keyPath := filepath.Join(dir, "key.pem")
	if err := rt.Identity.WritePEM(certPath, keyPath); err != nil {
		return fmt.Errorf("写入证书失败: %w", err)
	}
	fmt.Printf("证书已写入 %s\n", certPath)
	return nil
}

// printServerInfo 打印监听信息
func printServerInfo(cfg *config.Config, rt *app.Runtime) {
	fmt.Println()
	fmt.Println("╔════════════════════════════════════════════════════════════════════════╗")
	fmt.Printf("║  %-70s║\n", "rtserver "+rtlink.Version)
	fmt.Println("╠════════════════════════════════════════════════════════════════════════╣")
	if addr := rt.WebTransport.Addr(); addr != nil {
		fmt.Printf("║  WebTransport: %-56s║\n", "https://"+addr.String()+cfg.Server.WebTransport.PathPrefix)
		fmt.Printf("║  Cert SHA-256 (rtclient -cert-hash):%-35s║\n", "")
		fmt.Printf("║    %-68s║\n", rt.Identity.HashHex())
	} else {
		fmt.Printf("║  WebTransport: %-56s║\n", "disabled")
	}
	if addr := rt.HTTP.Addr(); addr != nil {
		fmt.Printf("║  WebSocket:    %-56s║\n", "ws://"+addr.String()+cfg.Server.HTTP.WebSocketPath)
		if cfg.Server.HTTP.EnableMetrics {
			fmt.Printf("║  Metrics:      %-56s║\n", "http://"+addr.String()+"/metrics")
		}
	}
	fmt.Println("╚════════════════════════════════════════════════════════════════════════╝")
	fmt.Println()
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("rtserver %s\n", rtlink.Version)
	if rtlink.GitCommit != "" {
		fmt.Printf("  commit: %s\n", rtlink.GitCommit)
	}
	if rtlink.BuildDate != "" {
		fmt.Printf("  built:  %s\n", rtlink.BuildDate)
	}
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("rtserver - WebTransport ACK 服务与 WebSocket 回显服务")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  rtserver [选项]")
	fmt.Println()
	fmt.Println("选项:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("环境变量:")
	fmt.Println("  RTLINK_WT_ADDR        WebTransport 监听地址")
	fmt.Println("  RTLINK_HTTP_ADDR      HTTP 监听地址")
	fmt.Println("  RTLINK_CERT_FILE      PEM 证书文件")
	fmt.Println("  RTLINK_KEY_FILE       PEM 私钥文件")
	fmt.Println("  RTLINK_LOG_LEVEL      日志级别")
	fmt.Println("  RTLINK_LOG_FORMAT     日志格式")
	fmt.Println()
	fmt.Println("示例:")
	fmt.Println("  rtserver -wt-addr :4433 -http-addr 127.0.0.1:8080")
	fmt.Println("  rtserver -cert server.pem -key server.key")
}
