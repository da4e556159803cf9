package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/tailorcam/internal/app"
	"github.com/ayusman/tailorcam/internal/capture"
	"github.com/ayusman/tailorcam/internal/detector"
	"github.com/ayusman/tailorcam/internal/measure"
	"github.com/ayusman/tailorcam/internal/metrics"
	"github.com/ayusman/tailorcam/internal/server"
	"github.com/ayusman/tailorcam/internal/session"
	"github.com/ayusman/tailorcam/internal/store"
	"github.com/ayusman/tailorcam/internal/tray"
)

var (
	addr        = flag.String("addr", ":8080", "HTTP server address")
	cameraID    = flag.Int("camera", 0, "Camera device index")
	fps         = flag.Int("fps", capture.DefaultFPS, "Camera frames per second")
	webDirFlag  = flag.String("web", "", "Static web directory (searched for when empty)")
	dbPathFlag  = flag.String("db", "", "Settings database path (default ~/.tailorcam/tailorcam.db)")
	height      = flag.Float64("height", session.DefaultReferenceHeight, "Reference height in centimeters")
	calibration = flag.Float64("calibration", measure.DefaultCalibration, "Height to nose-hip span ratio")
	motion      = flag.Float64("motion", 1.0, "Percent of changed pixels that wakes the detector while nobody is in view (0 = always detect)")
	useTray     = flag.Bool("tray", false, "Show a system tray menu")
)

func main() {
	flag.Parse()
	fmt.Println("Tailorcam - Body Measurements")

	dataDir, err := dataDir()
	if err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	dbPath := *dbPathFlag
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "tailorcam.db")
	}
	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// Flags given on the command line replace the stored settings.
	if err := saveExplicitFlags(st); err != nil {
		log.Fatalf("Failed to save settings: %v", err)
	}

	sessCfg := session.DefaultConfig()
	sessCfg.ReferenceHeightCm = *height
	sessCfg.Calibration = *calibration

	camCfg := capture.DefaultConfig()
	camCfg.DeviceID = *cameraID
	camCfg.FPS = *fps

	m := metrics.New()
	a := app.New(app.Config{
		Store:    st,
		Metrics:  m,
		Camera:   camCfg,
		Detector: detector.DefaultConfig(),
		Session:  sessCfg,

		MotionThreshold: *motion,
	})
	a.SetEnabled(true)

	if err := a.Start(); err != nil {
		log.Printf("Camera unavailable (%v), serving API only", err)
	}
	defer a.Stop()

	webDir := *webDirFlag
	if webDir == "" {
		webDir = findWebDir()
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Session:   a.Session(),
		Store:     st,
		Frames:    a,
		Metrics:   m,
	})
	defer srv.Close()

	httpServer := &http.Server{
		Addr:    *addr,
		Handler: srv,
	}
	go func() {
		fmt.Printf("Starting server on %s\n", *addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if *useTray {
		runTray(a, sigChan)
	} else {
		<-sigChan
	}

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}

// runTray blocks until the tray quits or a signal arrives.
func runTray(a *app.App, sigChan <-chan os.Signal) {
	t := tray.New()
	t.OnToggle(a.SetEnabled)
	t.OnOpen(func() {
		if err := openBrowser(browserURL(*addr)); err != nil {
			log.Printf("Failed to open browser: %v", err)
		}
	})
	t.SetHeight(a.Session().ReferenceHeight())
	a.OnHeightChanged(t.SetHeight)
	a.OnMeasured(func(m session.Measurement) {
		t.SetLast(m.Display.ShoulderWidth, m.Display.TotalLength)
	})

	go func() {
		<-sigChan
		t.Quit()
	}()

	t.Run()
}

// saveExplicitFlags stores the settings flags that were set on the command line.
func saveExplicitFlags(st *store.Store) error {
	var err error
	flag.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case "height":
			if verr := session.ValidateHeight(*height); verr != nil {
				err = fmt.Errorf("-height: %w", verr)
				return
			}
			err = st.Settings().SetFloat(store.KeyReferenceHeight, *height)
		case "calibration":
			err = st.Settings().SetFloat(store.KeyCalibration, *calibration)
		}
	})
	return err
}

func dataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	dir := filepath.Join(homeDir, ".tailorcam")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

func browserURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.tailorcam/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".tailorcam", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
