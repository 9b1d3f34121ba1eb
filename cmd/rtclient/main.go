// Package main 提供 rtclient 命令行入口
//
// rtclient 与服务端协商传输（WebTransport 优先，WebSocket 回退），
// 然后依次发送命令行中的每条消息。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	rtlink "github.com/hudwiz/go-rtlink"
	"github.com/hudwiz/go-rtlink/config"
	"github.com/hudwiz/go-rtlink/pkg/lib/log"
)

// hashList 可重复的 -cert-hash 参数
type hashList []string

func (h *hashList) String() string { return strings.Join(*h, ",") }

func (h *hashList) Set(v string) error {
	*h = append(*h, v)
	return nil
}

var (
	configFile = flag.String("config", "", "配置文件路径（JSON）")
	serverURL  = flag.String("url", "", "服务地址，例如 https://localhost:4433/")
	insecure   = flag.Bool("insecure", false, "跳过证书校验（仅开发环境）")
	wsPort     = flag.Int("ws-port", -1, "WebSocket 端口（-1 = 使用配置，0 = 使用地址中的端口）")
	wsPath     = flag.String("ws-path", "", "WebSocket 路径（默认 /ws）")
	preferWS   = flag.Bool("prefer-ws", false, "跳过 WebTransport，直接使用 WebSocket")
	timeout    = flag.Duration("timeout", 0, "协商超时（0 = 使用配置）")
	interval   = flag.Duration("interval", 0, "消息之间的间隔")

	logLevel = flag.String("log-level", "warn", "日志级别")

	showVersion = flag.Bool("version", false, "显示版本信息")

	certHashes hashList
)

func init() {
	flag.Var(&certHashes, "cert-hash", "服务端证书 SHA-256 指纹（十六进制，可重复）")
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Printf("rtclient %s\n", rtlink.Version)
		return nil
	}

	log.Setup(log.Options{Level: *logLevel})

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	target := *serverURL
	if target == "" {
		target = cfg.Client.ServerURL
	}

	opts := []rtlink.Option{rtlink.WithConfig(cfg)}
	if *insecure {
		opts = append(opts, rtlink.WithInsecureSkipVerify())
	}
	if len(certHashes) > 0 {
		opts = append(opts, rtlink.WithCertHashes(certHashes...))
	}
	if *wsPort >= 0 {
		opts = append(opts, rtlink.WithWebSocketPort(*wsPort))
	}
	if *wsPath != "" {
		opts = append(opts, rtlink.WithWebSocketPath(*wsPath))
	}
	if *preferWS {
		opts = append(opts, rtlink.WithPreferWebSocket(true))
	}
	if *timeout > 0 {
		opts = append(opts, rtlink.WithNegotiateTimeout(*timeout))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := rtlink.Dial(ctx, target, opts...)
	if err != nil {
		printNegotiationFailure(err)
		return err
	}
	defer func() { _ = client.Close() }()

	fmt.Printf("✅ 已连接 %s（%s）\n", target, client.Kind())
	for _, a := range client.Attempts() {
		status := "ok"
		if a.Err != nil {
			status = a.Err.Error()
		}
		fmt.Printf("   %-12s %8s  %s\n", a.Kind, a.Duration().Round(time.Millisecond), status)
	}

	messages := flag.Args()
	if len(messages) == 0 {
		messages = []string{"ping"}
	}

	for i, msg := range messages {
		if i > 0 && *interval > 0 {
			select {
			case <-time.After(*interval):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := client.Send(sendCtx, msg)
		cancel()
		if err != nil {
			return fmt.Errorf("发送 %q 失败: %w", log.Truncate(msg, 32), err)
		}
		fmt.Printf("→ %s\n", log.Truncate(msg, 64))
	}
	return nil
}

// loadConfig 加载配置文件并应用环境变量
func loadConfig() (*config.Config, error) {
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
	return cfg, nil
}

// printNegotiationFailure 打印两次失败的详情
func printNegotiationFailure(err error) {
	var nerr *rtlink.NegotiationError
	if !errors.As(err, &nerr) {
		return
	}
	fmt.Fprintln(os.Stderr, "❌ 协商失败")
	if nerr.Modern != nil {
		fmt.Fprintf(os.Stderr, "   webtransport: %v\n", nerr.Modern)
	}
	fmt.Fprintf(os.Stderr, "   websocket:    %v\n", nerr.Fallback)
}
