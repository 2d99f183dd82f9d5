package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/chaos-io/cutout/client"
	"github.com/chaos-io/cutout/imgproc"
	"github.com/chaos-io/cutout/model"
	"github.com/chaos-io/cutout/util"
	"github.com/segmentio/ksuid"
)

var phaseMessages = map[string]string{
	client.PhaseUpload:         "uploading image",
	client.PhaseModelLoading:   "loading model",
	client.PhaseInference:      "running inference",
	client.PhasePostProcessing: "refining result",
	client.PhaseCompleted:      "done",
}

func main() {
	file := flag.String("file", "", "input image, local path or http(s) URL (jpeg/png/webp)")
	bgColor := flag.String("color", imgproc.Transparent, "background color, #RRGGBB or transparent")
	server := flag.String("server", "", "API base url, default $CUTOUT_API_URL or local dev")
	outDir := flag.String("out", ".", "output directory")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session := client.NewSession()

	// 读文件
	if err := session.BeginUpload(); err != nil {
		log.Fatal(err)
	}
	data, err := util.ReadImage(*file)
	_ = session.FinishUpload(err)
	if err != nil {
		log.Fatal("failed to read image: ", err)
	}

	if contentType := http.DetectContentType(data); !imgproc.IsSupportedType(contentType) {
		log.Fatalf("unsupported file type %s, only JPEG/PNG/WebP", contentType)
	}
	if imgproc.HasAlpha(data) {
		fmt.Println("note: input already has an alpha channel")
	}

	// 抠图是昂贵调用，浏览器里有确认弹窗，终端里敲回车确认
	fmt.Printf("remove background of %s with background %q? [enter to continue] ", *file, *bgColor)
	_, _ = fmt.Scanln()
	if err := session.Confirm(); err != nil {
		log.Fatal(err)
	}
	if err := session.BeginProcessing(); err != nil {
		log.Fatal(err)
	}

	// 当前阶段由进度回调喂给渲染循环
	var phase atomic.Value
	phase.Store(client.PhaseUpload)

	sim := client.NewSimulator(client.DefaultPhases, func(p model.ProgressInfo) {
		phase.Store(p.Key)
	})
	sim.Start()

	renderDone := make(chan struct{})
	go renderProgress(sim, &phase, renderDone)

	api := client.NewAPI(*server)
	cost := util.Trace("process image")
	result, err := api.ProcessImage(ctx, filepath.Base(*file), data, *bgColor)
	if err != nil {
		sim.Stop()
		close(renderDone)
		_ = session.FinishProcessing(err)
		fmt.Println()
		log.Fatal("failed to process image: ", err)
	}

	sim.Complete()
	close(renderDone)
	_ = session.FinishProcessing(nil)
	fmt.Printf("\r%-20s %3d%%\n", phaseMessages[client.PhaseCompleted], sim.Percent())
	cost()

	outPath := filepath.Join(*outDir, ksuid.New().String()+"_cutout.png")
	if err := os.WriteFile(outPath, result, 0644); err != nil {
		log.Fatal("failed to write output: ", err)
	}
	if img, _, derr := util.DecodeImage(result); derr == nil {
		log.Printf("saved %s (%dx%d, %d bytes)", outPath, img.Bounds().Dx(), img.Bounds().Dy(), len(result))
	} else {
		log.Printf("saved %s (%d bytes)", outPath, len(result))
	}
}

// renderProgress 定时刷新进度行，直到真实调用结束
func renderProgress(sim *client.Simulator, phase *atomic.Value, done <-chan struct{}) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			msg := phaseMessages[phase.Load().(string)]
			fmt.Printf("\r%-20s %3d%%", msg, sim.Percent())
		}
	}
}
