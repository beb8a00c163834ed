package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/yok-tottii/EzVoiceEdit/internal/audio"
	"github.com/yok-tottii/EzVoiceEdit/internal/config"
	"github.com/yok-tottii/EzVoiceEdit/internal/enhance"
	"github.com/yok-tottii/EzVoiceEdit/internal/hotkey"
	"github.com/yok-tottii/EzVoiceEdit/internal/logger"
	"github.com/yok-tottii/EzVoiceEdit/internal/notification"
	"github.com/yok-tottii/EzVoiceEdit/internal/permissions"
	"github.com/yok-tottii/EzVoiceEdit/internal/recognition"
	"github.com/yok-tottii/EzVoiceEdit/internal/selection"
	"github.com/yok-tottii/EzVoiceEdit/internal/session"
	"github.com/yok-tottii/EzVoiceEdit/internal/tray"
	"github.com/yok-tottii/EzVoiceEdit/internal/typing"
)

const version = "0.1.0"

// shutdownGrace bounds how long a quit waits for an in-flight session
// before the watchdog force-exits the process
const shutdownGrace = 2 * time.Second

// App holds all application state
type App struct {
	logger      *logger.Logger
	config      *config.Config
	trayMgr     *tray.Manager
	notifier    *notification.NotificationManager
	hotkeyMgr   *hotkey.Manager
	audioDriver audio.AudioDriver
	audioConfig audio.Config
	recognizer  *recognition.WhisperRecognizer
	enhancer    *enhance.Client
	controller  *session.Controller

	micGranted bool
	accGranted bool
}

func init() {
	// macOS requires the main thread for CGO UI calls
	runtime.LockOSThread()
}

func main() {
	app := &App{}

	loggerConfig := logger.DefaultConfig()
	var err error
	app.logger, err = logger.New(loggerConfig)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer app.logger.Close()

	app.logger.Info("EzVoiceEdit v%s starting", version)

	// AWS credentials and model overrides may live in a .env next to
	// the binary; a missing file is fine
	if err := godotenv.Load(); err != nil {
		app.logger.Debug("No .env file loaded: %v", err)
	}

	configPath := config.GetConfigPath()
	app.config, err = config.Load(configPath)
	if err != nil {
		app.logger.Error("Failed to load config: %v", err)
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := app.config.Validate(); err != nil {
		app.logger.Error("Invalid config: %v", err)
		log.Fatalf("Invalid config: %v", err)
	}
	app.logger.Info("Config loaded: %s", configPath)

	app.notifier = notification.NewNotificationManager("EzVoiceEdit")

	app.recognizer = recognition.NewWhisperRecognizer(recognition.Config{
		Language: app.config.Language,
	})
	defer app.recognizer.Close()

	// The Bedrock client degrades rather than fails: without credentials
	// every transcript is typed at the cursor instead of enhanced
	enhanceConfig := enhance.ConfigFromEnv()
	enhanceConfig.Timeout = time.Duration(app.config.EnhanceTimeout) * time.Second
	app.enhancer = enhance.New(context.Background(), enhanceConfig)
	if app.enhancer.IsAvailable() {
		app.logger.Info("Enhancement client ready (model: %s)", app.enhancer.ModelID())
	} else {
		app.logger.Warn("Enhancement client unavailable - transcripts will be typed directly")
		app.notifier.EnhancementUnavailable()
	}

	app.trayMgr = tray.NewManager(tray.Config{
		OnReady:        app.onReady,
		OnToggle:       app.handleToggle,
		OnDeviceChange: app.handleDeviceChange,
		OnQuit:         app.handleQuit,
		Notifier:       app.notifier,
	})

	app.logger.Info("Starting systray")

	// Blocks until systray.Quit()
	app.trayMgr.Run()
}

// onReady finishes initialization once the systray is up
func (a *App) onReady() {
	a.logger.Info("Systray ready - initializing application")

	permChecker := permissions.NewPermissionChecker()
	perms := permChecker.CheckAllPermissions()

	a.micGranted = perms["microphone"]
	a.accGranted = perms["accessibility"]

	if a.micGranted {
		a.logger.Info("Microphone permission: granted")
	} else {
		a.logger.Warn("Microphone permission: not granted - recording disabled")
		a.notifier.MicrophonePermissionDenied()
	}

	if a.accGranted {
		a.logger.Info("Accessibility permission: granted")
	} else {
		a.logger.Warn("Accessibility permission: not granted - hotkey and text insertion disabled")
		a.notifier.AccessibilityPermissionDenied()
	}

	// Load the model off the main thread; the session controller
	// rejects recordings until it is ready
	go a.loadModel()

	if a.micGranted {
		driver, err := audio.NewPortAudioDriver()
		if err != nil {
			a.logger.Error("Failed to create PortAudio driver: %v", err)
		} else {
			a.audioConfig = audio.DefaultConfig()
			a.audioConfig.DeviceID = a.config.AudioDeviceID
			if err := driver.Initialize(a.audioConfig); err != nil {
				a.logger.Error("Failed to initialize audio driver: %v", err)
				a.notifier.DeviceNotFound()
			} else {
				a.audioDriver = driver
				a.logger.Info("Audio driver initialized (device: %d)", a.audioConfig.DeviceID)
				a.refreshDeviceMenu()
			}
		}
	}

	if a.audioDriver != nil {
		bridge := selection.NewBridge(selection.Config{
			CopyTimeout:    time.Duration(a.config.SelectionCopyWait) * time.Millisecond,
			RestoreTimeout: time.Duration(a.config.SelectionPasteWait) * time.Millisecond,
		})

		a.controller = session.New(
			a.audioDriver,
			a.recognizer,
			bridge,
			a.enhancer,
			typing.NewTyper(),
			a.onStatus,
			session.Config{
				Audio:       a.audioConfig,
				MaxDuration: time.Duration(a.config.MaxRecordTime) * time.Second,
			},
		)
		a.logger.Info("Session controller ready")
	}

	if a.accGranted {
		a.registerHotkey()
	}

	// Ctrl+C from a terminal should shut down the same way as Quit
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		a.logger.Info("Received termination signal")
		a.handleQuit()
		a.trayMgr.Quit()
	}()

	a.logger.Info("Application initialized")
}

// loadModel resolves and loads the Whisper model
func (a *App) loadModel() {
	modelPath := ""

	if a.config.ModelPath != "" {
		if err := a.config.ValidateModelPath(); err != nil {
			a.logger.Warn("Configured model path invalid: %v", err)
		} else {
			modelPath, _ = a.config.GetModelPath()
		}
	}

	if modelPath == "" {
		// Fall back to the models directory under Application Support
		found, err := recognition.FindModel(config.GetRecommendedModelName())
		if err != nil {
			a.logger.Error("No model file found: %v", err)
			a.notifier.ModelNotFound(recognition.GetDefaultModelPath())
			return
		}
		modelPath = found
	}

	a.logger.Info("Loading model: %s", modelPath)
	if err := a.recognizer.LoadModel(modelPath); err != nil {
		a.logger.Error("Failed to load model: %v", err)
		a.trayMgr.ShowError(fmt.Sprintf("Failed to load model: %v", err))
		return
	}

	a.logger.Info("Model loaded")
	a.notifier.ModelLoaded()
}

// registerHotkey registers the configured global hotkey and starts the
// event loop
func (a *App) registerHotkey() {
	hotkeyConfig, err := hotkey.FromConfig(a.config.Hotkey)
	if err != nil {
		a.logger.Error("Invalid hotkey configuration: %v", err)
		a.trayMgr.ShowError(fmt.Sprintf("Invalid hotkey configuration: %v", err))
		return
	}

	if conflicts := hotkey.CheckConflicts(hotkeyConfig.Modifiers, hotkeyConfig.Key); len(conflicts) > 0 {
		for _, c := range conflicts {
			a.logger.Warn("Hotkey conflicts with %s (%s)", c.Name, c.Description)
		}
	}

	a.hotkeyMgr = hotkey.New()
	if err := a.hotkeyMgr.Register(hotkeyConfig); err != nil {
		a.logger.Error("Failed to register hotkey: %v", err)
		a.trayMgr.ShowError(fmt.Sprintf("Failed to register hotkey: %v", err))
		return
	}

	formatted := hotkey.FormatHotkey(hotkeyConfig.Modifiers, hotkeyConfig.Key)
	a.logger.Info("Hotkey registered: %s", formatted)

	go a.hotkeyEventLoop()
}

// hotkeyEventLoop drives the session controller from hotkey events.
// Only the release edge is actionable; presses are logged so held keys
// are visible in the logs.
func (a *App) hotkeyEventLoop() {
	a.logger.Info("Hotkey event loop started")

	for event := range a.hotkeyMgr.Events() {
		switch event.Type {
		case hotkey.Pressed:
			a.logger.Debug("Hotkey pressed")

		case hotkey.Released:
			a.logger.Debug("Hotkey released")
			a.handleToggle()
		}
	}

	a.logger.Info("Hotkey event loop stopped")
}

// handleToggle forwards a toggle edge from the hotkey or the menu item
func (a *App) handleToggle() {
	if a.controller == nil {
		a.logger.Warn("Toggle ignored: session controller not initialized")
		return
	}

	if err := a.controller.ToggleEdge(); err != nil {
		a.logger.Warn("Toggle edge: %v", err)
	}
}

// onStatus receives every session state transition
func (a *App) onStatus(state session.State, status string) {
	a.logger.Info("[%s] %s", state, status)
	a.trayMgr.SetStatus(state, status)
}

// refreshDeviceMenu rebuilds the input device submenu
func (a *App) refreshDeviceMenu() {
	devices, err := a.audioDriver.ListDevices()
	if err != nil {
		a.logger.Warn("Failed to list audio devices: %v", err)
		return
	}

	menuDevices := make([]tray.Device, 0, len(devices))
	for _, d := range devices {
		menuDevices = append(menuDevices, tray.Device{
			ID:        d.ID,
			Name:      d.Name,
			IsDefault: d.IsDefault,
			IsCurrent: d.ID == a.audioConfig.DeviceID || (a.audioConfig.DeviceID == -1 && d.IsDefault),
		})
	}

	a.trayMgr.UpdateDeviceMenu(menuDevices)
}

// handleDeviceChange switches the capture device and persists the choice
func (a *App) handleDeviceChange(deviceID int) {
	a.logger.Info("Switching audio device to %d", deviceID)

	if a.controller != nil && a.controller.GetState() == session.Recording {
		a.logger.Warn("Device change ignored while recording")
		return
	}

	a.audioConfig.DeviceID = deviceID
	if err := a.audioDriver.Initialize(a.audioConfig); err != nil {
		a.logger.Error("Failed to switch audio device: %v", err)
		a.trayMgr.ShowError(fmt.Sprintf("Failed to switch audio device: %v", err))
		return
	}

	a.config.AudioDeviceID = deviceID
	if err := a.config.Save(config.GetConfigPath()); err != nil {
		a.logger.Warn("Failed to persist device selection: %v", err)
	}

	a.refreshDeviceMenu()
}

// handleQuit shuts the application down. A watchdog force-exits the
// process if cleanup hangs past the grace period, so a stuck audio or
// network call can never keep the process alive.
func (a *App) handleQuit() {
	a.logger.Info("Quit requested")

	time.AfterFunc(shutdownGrace, func() {
		a.logger.Error("Shutdown watchdog fired - forcing exit")
		os.Exit(1)
	})

	if a.hotkeyMgr != nil {
		a.hotkeyMgr.Close()
	}

	if a.controller != nil {
		if !a.controller.Shutdown(shutdownGrace) {
			a.logger.Warn("Session did not finish within the grace period")
		}
	}

	if a.audioDriver != nil {
		a.audioDriver.Close()
	}

	a.logger.Info("Application exiting")
}
