package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	appcfg "github.com/park285/cheese-chess/internal/config"
	"github.com/park285/cheese-chess/internal/compare"
	"github.com/park285/cheese-chess/internal/msgcat"
	"github.com/park285/cheese-chess/internal/obslog"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	baseURL := flag.String("url", cfg.CompareBaseURL, "comparison backend base URL")
	health := flag.Bool("health", false, "only check backend health")
	saveDir := flag.String("save", "", "directory for processed previews (optional)")
	flag.Parse()

	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	catalog, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		log.Fatalf("messages: %v", err)
	}

	client := compare.NewClient(*baseURL,
		compare.WithTimeout(cfg.ClientTimeout()),
		compare.WithRetry(cfg.ClientRetry),
		compare.WithLogger(obslog.L()),
	)
	ctx := context.Background()

	if *health {
		h, err := client.Health(ctx)
		if err != nil {
			log.Fatalf("health check failed: %v", err)
		}
		fmt.Println(catalog.Text("compare.health.ok", map[string]string{"Version": h.Version}, h.Status))
		if h.Message != "" {
			fmt.Println(h.Message)
		}
		return
	}

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: compare [-url URL] [-save DIR] <image1> <image2>")
		os.Exit(2)
	}
	res, err := client.CompareFiles(ctx, flag.Arg(0), flag.Arg(1))
	if err != nil {
		log.Fatalf("compare failed: %v", err)
	}

	fmt.Println(res.Conclusion(catalog))
	fmt.Printf("overall    %3d%%\n", res.Percent())
	fmt.Printf("color      %3d%%\n", compare.Percent(res.ColorSimilarity))
	fmt.Printf("texture    %3d%%\n", compare.Percent(res.TextureSimilarity))
	fmt.Printf("structural %3d%%\n", compare.Percent(res.StructuralSimilarity))
	if res.ProcessingTime > 0 {
		fmt.Printf("time       %.3fs\n", res.ProcessingTime)
	}

	if *saveDir != "" {
		if err := savePreviews(*saveDir, res); err != nil {
			log.Fatalf("save previews: %v", err)
		}
	}
}

func savePreviews(dir string, res *compare.Result) error {
	a, b, err := res.ProcessedImages()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for i, data := range [][]byte{a, b} {
		if len(data) == 0 {
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("processed_%d.png", i+1))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		fmt.Println("saved", path)
	}
	return nil
}
