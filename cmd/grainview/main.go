// Command grainview renders a grain scene to a PNG file.
//
// It builds a volume from generated terrain or an image, paints the
// configured strokes, synchronizes through a presentation buffer, and
// overlays the debug collider.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/grain"
	"github.com/gogpu/grain/debugdraw"
	"github.com/gogpu/grain/internal/config"
	"github.com/gogpu/grain/internal/worldgen"
	"github.com/gogpu/grain/present"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

func main() {
	var (
		cfgPath = flag.String("config", "", "scene YAML (default $"+config.EnvPath+")")
		imgPath = flag.String("image", "", "build the volume from a PNG, JPEG, BMP or WebP file")
		output  = flag.String("output", "", "output file (overrides the scene)")
		verbose = flag.Bool("v", false, "log debug output")
	)
	flag.Parse()

	if *verbose {
		grain.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *imgPath != "" {
		cfg.World.Image = *imgPath
	}
	if *output != "" {
		cfg.Output.Path = *output
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	mats, err := cfg.Materials()
	if err != nil {
		log.Fatalf("Failed to build palette: %v", err)
	}

	v, err := buildVolume(cfg, mats)
	if err != nil {
		log.Fatalf("Failed to build volume: %v", err)
	}
	if s, ok := cfg.Strategy(); ok {
		v.SetStrategy(s)
	}

	buf := present.NewImageBuffer(0, 0)
	v.MarkAll()
	if err := v.Synchronize(buf); err != nil {
		log.Fatalf("Initial synchronize failed: %v", err)
	}

	painted := paintStrokes(v, cfg.Strokes, mats)
	if err := v.Synchronize(buf); err != nil {
		log.Fatalf("Synchronize failed: %v", err)
	}
	st := buf.Stats()
	log.Printf("Painted %d cells (strategy %s): %d full, %d region pushes, %d bytes",
		painted, v.Strategy(), st.Full, st.Regions, st.Bytes)

	out := render(buf.Snapshot(), cfg.Output)

	if len(cfg.Collider.Points) > 0 {
		if err := drawCollider(out, v, cfg); err != nil {
			log.Fatalf("Collider: %v", err)
		}
	}

	if err := savePNG(cfg.Output.Path, out); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	w, h := v.Size()
	log.Printf("Scene saved to %s (%dx%d cells, %dx%d pixels)\n",
		cfg.Output.Path, w, h, out.Bounds().Dx(), out.Bounds().Dy())
}

func buildVolume(cfg *config.Config, mats map[string]grain.Material) (*grain.Volume, error) {
	if cfg.World.Image != "" {
		f, err := os.Open(cfg.World.Image)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = f.Close()
		}()
		img, format, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", cfg.World.Image, err)
		}
		log.Printf("Loaded %s image %v", format, img.Bounds())
		return grain.NewVolumeFromImage(img, mats[cfg.World.ImageMaterial])
	}

	v, err := grain.NewVolume(cfg.World.Width, cfg.World.Height)
	if err != nil {
		return nil, err
	}
	layers := make([]worldgen.Layer, len(cfg.World.Terrain))
	for i, l := range cfg.World.Terrain {
		layers[i] = worldgen.Layer{Material: mats[l.Material], Depth: l.Depth}
	}
	if len(layers) == 0 {
		return v, nil
	}
	if _, err := worldgen.New(worldgen.DefaultOptions(cfg.World.Seed)).Fill(v, layers); err != nil {
		return nil, err
	}
	return v, nil
}

// paintStrokes stamps a disc of material every half material cell along each
// stroke. Positions outside the volume are skipped.
func paintStrokes(v *grain.Volume, strokes []config.StrokeConfig, mats map[string]grain.Material) int {
	const step = 0.5 / grain.Scale
	painted := 0
	for _, s := range strokes {
		cell := grain.Filled(mats[s.Material])
		from := grain.Pt(s.From[0], s.From[1])
		to := grain.Pt(s.To[0], s.To[1])
		n := max(int(from.Distance(to)/step), 1)
		for i := 0; i <= n; i++ {
			c := from.Add(to.Sub(from).Mul(float64(i) / float64(n)))
			for dy := -s.Radius; dy <= s.Radius; dy += step {
				for dx := -s.Radius; dx <= s.Radius; dx += step {
					if dx*dx+dy*dy > s.Radius*s.Radius {
						continue
					}
					err := v.SetPixelAt(c.Add(grain.Pt(dx, dy)), cell)
					switch {
					case err == nil:
						painted++
					case !errors.Is(err, grain.ErrOutOfBounds):
						log.Printf("paint: %v", err)
					}
				}
			}
		}
	}
	return painted
}

// render upscales the presented image onto the background colour.
func render(src *image.RGBA, oc config.OutputConfig) *image.RGBA {
	sb := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, sb.Dx()*oc.PixelScale, sb.Dy()*oc.PixelScale))
	if oc.Background != "" {
		draw.Draw(out, out.Bounds(), image.NewUniform(grain.Hex(oc.Background)), image.Point{}, draw.Src)
	}
	xdraw.NearestNeighbor.Scale(out, out.Bounds(), src, sb, xdraw.Over, nil)
	return out
}

func drawCollider(out *image.RGBA, v *grain.Volume, cfg *config.Config) error {
	cc := cfg.Collider
	points := make([]grain.Index, len(cc.Points))
	for i, p := range cc.Points {
		points[i] = grain.Idx(p[0], p[1])
	}
	c, err := grain.NewCollider(points, nil)
	if err != nil {
		return err
	}

	offset := grain.Idx(cc.Offset[0], cc.Offset[1])
	hits := c.Probe(v, offset, cc.Mask)
	log.Printf("Collider: %d of %d points touch layers %#b", len(hits), len(points), cc.Mask)

	col := color.Color(color.RGBA{R: 0, G: 255, B: 255, A: 255})
	if len(hits) > 0 {
		col = color.RGBA{R: 255, G: 64, B: 64, A: 255}
	}

	// Unit-cell space to output pixels.
	ppu := float64(cfg.Output.PixelScale * grain.Scale)
	d := debugdraw.New(out, grain.Scaling(ppu, ppu))
	pose := grain.Rigid(cc.Angle, float64(offset.X)/grain.Scale, float64(offset.Y)/grain.Scale)
	c.DrawDebug(d, pose, 1.5, col)
	return nil
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	return png.Encode(f, img)
}
