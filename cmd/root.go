package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tanq16/hlsget/internal/output"
	"github.com/tanq16/hlsget/internal/pipeline"
	"github.com/tanq16/hlsget/internal/utils"
)

var (
	outputPath      string
	workers         int
	timeout         time.Duration
	kaTimeout       time.Duration
	userAgent       string
	proxyURL        string
	proxyUsername   string
	proxyPassword   string
	headers         []string
	keepSegments    bool
	requireComplete bool
	ffmpegFlags     []string
	debug           bool
)

var HlsgetVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "hlsget [MANIFEST]",
	Short:   "hlsget downloads and merges HLS playlist segments",
	Long:    "hlsget fetches the segments of an m3u8 playlist concurrently with resume support, verifies them against a persisted ledger, and merges them with ffmpeg.",
	Version: HlsgetVersion,
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		utils.InitLogger(debug)
		job := utils.Job{
			ID:               uuid.NewString()[:8],
			ManifestSource:   args[0],
			OutputPath:       outputPath,
			Workers:          workers,
			KeepSegments:     keepSegments,
			RequireComplete:  requireComplete,
			FFmpegFlags:      ffmpegFlags,
			HTTPClientConfig: buildHTTPClientConfig(),
		}
		if err := runJob(signalContext(), job); err != nil {
			output.PrintError(fmt.Sprintf("Download failed: %v", err))
			os.Exit(1)
		}
		output.PrintSuccess("All tasks completed")
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runJob(ctx context.Context, job utils.Job) error {
	p := &pipeline.Pipeline{
		Job:      job,
		Progress: output.NewManager(),
	}
	return p.Run(ctx)
}

func buildHTTPClientConfig() utils.HTTPClientConfig {
	if userAgent == "randomize" {
		userAgent = utils.GetRandomUserAgent()
	}
	return utils.HTTPClientConfig{
		Timeout:       timeout,
		KATimeout:     kaTimeout,
		ProxyURL:      proxyURL,
		ProxyUsername: proxyUsername,
		ProxyPassword: proxyPassword,
		UserAgent:     userAgent,
		Headers:       utils.ParseHeaderArgs(headers),
	}
}

func signalContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 8, "Number of concurrent segment downloads")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 10*time.Second, "Per-request timeout (eg. 5s, 1m)")
	rootCmd.PersistentFlags().DurationVarP(&kaTimeout, "keep-alive-timeout", "k", 60*time.Second, "Keep-alive timeout for the HTTP client")
	rootCmd.PersistentFlags().StringVarP(&userAgent, "user-agent", "a", "", "User agent ('randomize' picks one from a local list)")
	rootCmd.PersistentFlags().StringVarP(&proxyURL, "proxy", "p", "", "HTTP/HTTPS proxy URL (e.g., proxy.example.com:8080)")
	rootCmd.PersistentFlags().StringVar(&proxyUsername, "proxy-username", "", "Proxy username (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringVar(&proxyPassword, "proxy-password", "", "Proxy password (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringArrayVarP(&headers, "header", "H", []string{}, "Custom headers (like 'Authorization: Basic dXNlcjpwYXNz'); can be specified multiple times")
	rootCmd.PersistentFlags().BoolVar(&keepSegments, "keep-segments", true, "Keep downloaded segments and ledger after merging (enables resume)")
	rootCmd.PersistentFlags().BoolVar(&requireComplete, "require-complete", false, "Abort before merge if any segment failed instead of producing partial output")
	rootCmd.PersistentFlags().StringArrayVar(&ffmpegFlags, "ffmpeg-flag", []string{}, "Additional ffmpeg flag passed through to the merge step; can be specified multiple times")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: extracted stream ID + .mp4)")
}
