// Command keyhacd is the reference host binary for the keymap engine:
// it wires the platform HookPort/UIElementPort, the Bubble Tea console
// (ConsolePort + ChooserPort), the clipboard history, the replay
// buffer, the threaded-action worker pool, and the optional Dictate
// action together, then hands the engine a programmatic rule set
// (configureRules, in rules.go) expressed directly against the
// engine's Go API.
package main

import (
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/keymapd/keyhac/internal/action"
	"github.com/keymapd/keyhac/internal/chime"
	"github.com/keymapd/keyhac/internal/clipboard"
	"github.com/keymapd/keyhac/internal/config"
	"github.com/keymapd/keyhac/internal/console"
	"github.com/keymapd/keyhac/internal/dictate"
	"github.com/keymapd/keyhac/internal/engine"
	"github.com/keymapd/keyhac/internal/postprocess"
	"github.com/keymapd/keyhac/internal/recorder"
	"github.com/keymapd/keyhac/internal/replay"
	"github.com/keymapd/keyhac/internal/runner"
	"github.com/keymapd/keyhac/internal/transcriber"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging to the console's debug pane")
	cfgFlag := flag.String("config", "", "path to config.toml (default ~/.config/keyhac/config.toml)")
	flag.Parse()

	cfgPath := *cfgFlag
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := log.New(io.Discard, "[keyhacd] ", log.Ltime|log.Lmicroseconds)
	if *debug {
		logger.SetOutput(os.Stderr)
	}

	con := console.New(cfg.Console.Theme, cfg.Console.CustomThemes, *debug)
	if *debug {
		logger.SetOutput(con.LogWriter())
	}

	audioReady := true
	if err := initPortAudio(); err != nil {
		logger.Printf("portaudio init failed, dictation will be disabled: %v", err)
		audioReady = false
	} else {
		defer closePortAudio()
	}

	hookPort, err := newHook(cfg, logger)
	if err != nil {
		log.Fatalf("create key hook: %v", err)
	}
	uiPort := newUIElement()

	e := engine.New(hookPort, uiPort, con, logger)

	buf := replay.New(logger)
	e.SetRecorder(buf)

	clipPort := clipboard.NewPort()
	historyPath := cfg.ClipboardHistory.PersistPath
	if historyPath == "" {
		historyPath = config.DefaultDataDir() + "/clipboard.json"
	}
	history, err := clipboard.LoadHistory(historyPath,
		cfg.ClipboardHistory.MaxItems,
		cfg.ClipboardHistory.MaxItemBytes,
		cfg.ClipboardHistory.MaxPersistBytes,
		80,
	)
	if err != nil {
		logger.Printf("load clipboard history: %v (starting empty)", err)
		history = clipboard.NewHistory(
			cfg.ClipboardHistory.MaxItems,
			cfg.ClipboardHistory.MaxItemBytes,
			cfg.ClipboardHistory.MaxPersistBytes,
			80,
		)
	}

	stopWatch := make(chan struct{})
	go clipPort.Watch(stopWatch, 500*time.Millisecond, func(s string) {
		// Capture under the engine lock: the clipboard-history chooser
		// reads the same History from the hook thread.
		e.RunFinished(func() { history.Capture(s) })
		if err := history.Save(historyPath); err != nil {
			logger.Printf("save clipboard history: %v", err)
		}
	})

	pool := runner.New(16, e.RunFinished, logger)

	d := deps{
		history: history,
		clip:    clipPort,
		chooser: con,
		pool:    pool,
		buffer:  buf,
		logger:  logger,
	}

	if audioReady {
		if dict := buildDictate(cfg, pool, e, logger); dict != nil {
			d.dictate = dict
		}
	}

	if err := e.Configure(func(e *engine.Engine) error {
		return configureRules(e, d)
	}); err != nil {
		logger.Printf("initial rule configuration failed: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		for sig := range sigCh {
			switch sig {
			case syscall.SIGHUP:
				logger.Printf("SIGHUP: reloading rules")
				if err := e.Configure(func(e *engine.Engine) error {
					return configureRules(e, d)
				}); err != nil {
					logger.Printf("reload failed, prior configuration retained: %v", err)
				}
			case syscall.SIGINT, syscall.SIGTERM:
				close(stopWatch)
				os.Exit(0)
			}
		}
	}()

	if err := con.Run(); err != nil {
		log.Fatalf("console: %v", err)
	}
	close(stopWatch)
}

// buildDictate assembles the optional Dictate action from
// its microphone/transcription/post-processing/chime dependencies. A
// missing microphone disables dictation entirely rather than failing
// startup, since the rest of the remapper has no dependency on it.
// Callers must have already initialized PortAudio successfully.
func buildDictate(cfg *config.Config, pool *runner.Pool, e *engine.Engine, logger *log.Logger) *dictateAction {
	if !recorder.MicAvailable() {
		logger.Printf("dictate: no microphone available, disabling")
		return nil
	}

	rec, err := recorder.New(cfg.Dictate.Audio.TargetSampleRate, cfg.Dictate.Audio.MaxDurationSec)
	if err != nil {
		logger.Printf("dictate: create recorder failed, disabling: %v", err)
		return nil
	}

	trans, err := transcriber.New(&cfg.Dictate.Transcription, logger)
	if err != nil {
		logger.Printf("dictate: create transcriber failed, disabling: %v", err)
		return nil
	}

	pp := postprocess.New(&cfg.Dictate.PostProcessing, cfg.Dictate.CustomTones, logger)

	chimePlayer, err := chime.New(cfg.Dictate.Audio.ChimeStart, cfg.Dictate.Audio.ChimeStop, cfg.Dictate.Audio.ChimeEnabled, logger)
	if err != nil {
		logger.Printf("dictate: create chime player failed, continuing without chime: %v", err)
		chimePlayer = nil
	}

	paste := func(text string) {
		if err := pasteText(cfg, text); err != nil {
			logger.Printf("dictate: paste failed: %v", err)
		}
	}

	d := dictate.New(rec, trans, pp, chimePlayer, cfg.Dictate.Transcription.TimeoutSec, paste, logger)
	return &dictateAction{
		start: action.NewThreadedAction(e, pool, d, logger),
		stop:  dictate.StopAction{Dictate: d},
	}
}
