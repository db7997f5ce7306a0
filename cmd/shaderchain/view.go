package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/spf13/cobra"
	"github.com/sqweek/dialog"

	"github.com/alphanu1/MME4CRT-v2.0/ebitenchain"
	"github.com/alphanu1/MME4CRT-v2.0/emucore"
	"github.com/alphanu1/MME4CRT-v2.0/preset"
	"github.com/alphanu1/MME4CRT-v2.0/shader"
	"github.com/alphanu1/MME4CRT-v2.0/storage"
	"github.com/alphanu1/MME4CRT-v2.0/tracker"
	"github.com/alphanu1/MME4CRT-v2.0/video"
)

// Native size of the pattern core.
const (
	patternWidth  = 256
	patternHeight = 224
)

func newViewCmd(o *options) *cobra.Command {
	var framePath string
	var pick bool
	cmd := &cobra.Command{
		Use:   "view [PRESET]",
		Short: "Preview a preset on a test pattern or image",
		Long: "Opens a window rendering a test pattern, or the image given with --frame, " +
			"through the shader chain.\n\n" +
			"Keys: F2 open preset, F5 reload, F11 fullscreen, arrows move the pattern, Esc quit.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := o.config.Video.ShaderPreset
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" && pick {
				p, err := choosePreset()
				if err != nil && !errors.Is(err, dialog.ErrCancelled) {
					return err
				}
				path = p
			}
			return runView(o, path, framePath)
		},
	}
	cmd.Flags().StringVar(&framePath, "frame", "", "image to use instead of the test pattern")
	cmd.Flags().BoolVar(&pick, "pick", true, "ask for a preset when none is given")
	return cmd
}

// viewer implements ebiten.Game around a video.Driver.
type viewer struct {
	opts     *options
	driver   *video.Driver
	backend  *ebitenchain.Backend
	fallback *ebitenchain.FallbackRenderer
	core     *patternCore
	memory   *emucore.RegionMemory
	format   shader.PixelFormat
	picked   chan string
	lastErr  string
}

func runView(o *options, shaderPath, framePath string) error {
	cfg := o.config
	chainCfg := cfg.Video.ChainConfig()
	format := chainCfg.Format()

	core := newPatternCore(patternWidth, patternHeight, format)
	if framePath != "" {
		c, err := newStillCore(framePath, chainCfg.InputScale*shader.BaseSize, format)
		if err != nil {
			return err
		}
		core = c
	}

	memory := emucore.NewRegionMemory(core)
	backend := ebitenchain.NewBackend(ebitenchain.WithSmooth(cfg.Video.Smooth))
	builder := shader.NewBuilder(chainCfg, backend,
		shader.WithTrackers(tracker.Factory{}),
		shader.WithMemory(memory))
	driver := video.NewDriver(builder,
		shader.Size{Width: core.width, Height: core.height},
		video.WithLoader(preset.Load),
		video.WithAspect(cfg.Video.PixelAspect, cfg.Video.KeepAspect))

	v := &viewer{
		opts:     o,
		driver:   driver,
		backend:  backend,
		fallback: ebitenchain.NewFallbackRenderer(format),
		core:     core,
		memory:   memory,
		format:   format,
		picked:   make(chan string, 1),
	}
	if err := driver.LoadShader(shaderPath); err != nil {
		shader.Logger().Warn("falling back to passthrough", "path", shaderPath, "err", err)
	}

	ebiten.SetWindowTitle(windowTitle(driver.ShaderPath()))
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowSizeLimits(storage.MinWindowWidth, storage.MinWindowHeight, -1, -1)
	ebiten.SetTPS(core.GetTiming().FPS)
	if cfg.Window.Fullscreen {
		ebiten.SetFullscreen(true)
	}

	err := ebiten.RunGame(v)
	v.Close()
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

func windowTitle(path string) string {
	if path == "" {
		return appName + " - passthrough"
	}
	return fmt.Sprintf("%s - %s", appName, path)
}

// Update implements ebiten.Game.
func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		if err := v.driver.Reload(); err != nil {
			shader.Logger().Error("reload failed", "path", v.driver.ShaderPath(), "err", err)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF2) {
		v.pickPreset()
	}
	select {
	case path := <-v.picked:
		v.loadPicked(path)
	default:
	}

	buttons := pollButtons()
	v.memory.SetInput(0, buttons)
	v.core.Step(buttons)
	v.memory.Refresh()
	return nil
}

// loadPicked loads a preset chosen in the dialog and remembers it for the
// next start.
func (v *viewer) loadPicked(path string) {
	if err := v.driver.LoadShader(path); err != nil {
		shader.Logger().Error("failed to load shader", "path", path, "err", err)
		return
	}
	ebiten.SetWindowTitle(windowTitle(path))
	v.opts.config.Video.ShaderPreset = path
	if err := v.opts.saveConfig(); err != nil {
		shader.Logger().Warn("preset not remembered", "err", err)
	}
}

// pickPreset opens a file dialog without blocking the game loop.
func (v *viewer) pickPreset() {
	go func() {
		path, err := choosePreset()
		if err != nil {
			return
		}
		select {
		case v.picked <- path:
		default:
		}
	}()
}

func choosePreset() (string, error) {
	b := dialog.File().
		Title("Select Shader Preset").
		Filter("Shader presets", "cgp", "glslp", "slangp", "kagep").
		Filter("Kage shaders", "kage")
	if dir, err := storage.GetPresetsDir(); err == nil {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			b = b.SetStartDir(dir)
		}
	}
	return b.Load()
}

func pollButtons() uint32 {
	var pressed []int
	keys := []struct {
		key    ebiten.Key
		button int
	}{
		{ebiten.KeyArrowUp, emucore.ButtonUp},
		{ebiten.KeyArrowDown, emucore.ButtonDown},
		{ebiten.KeyArrowLeft, emucore.ButtonLeft},
		{ebiten.KeyArrowRight, emucore.ButtonRight},
		{ebiten.KeyZ, emucore.ButtonA},
		{ebiten.KeyX, emucore.ButtonB},
	}
	for _, k := range keys {
		if ebiten.IsKeyPressed(k.key) {
			pressed = append(pressed, k.button)
		}
	}
	return emucore.Buttons(pressed...)
}

// Draw implements ebiten.Game.
func (v *viewer) Draw(screen *ebiten.Image) {
	frame := emucore.CaptureFrame(v.core, v.format.BytesPerPixel())

	chain, err := v.driver.Chain()
	if err != nil {
		v.report(err)
	}
	if chain == nil {
		v.fallback.Draw(screen, frame, v.driver.Viewport())
		return
	}
	rc, ok := chain.RenderChain().(*ebitenchain.Chain)
	if !ok {
		v.fallback.Draw(screen, frame, v.driver.Viewport())
		return
	}
	if err := rc.Draw(screen, frame); err != nil {
		v.report(err)
		v.fallback.Draw(screen, frame, v.driver.Viewport())
		return
	}
	v.lastErr = ""
}

// report logs err unless it repeats the previous frame's error.
func (v *viewer) report(err error) {
	if msg := err.Error(); msg != v.lastErr {
		v.lastErr = msg
		shader.Logger().Error("shader chain unavailable, drawing without shaders", "err", err)
	}
}

// Layout implements ebiten.Game.
func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := 1.0
	if m := ebiten.Monitor(); m != nil {
		s = m.DeviceScaleFactor()
	}
	w, h := int(float64(outsideWidth)*s), int(float64(outsideHeight)*s)
	if err := v.driver.Resize(w, h); err != nil && !errors.Is(err, video.ErrClosed) {
		shader.Logger().Warn("resize failed", "width", w, "height", h, "err", err)
	}
	return w, h
}

// Close releases the chain and the compiled shaders.
func (v *viewer) Close() {
	v.driver.Close()
	v.backend.Close()
}
