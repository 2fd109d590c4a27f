package main

import (
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/Faultbox/shoreline/internal/brush"
	"github.com/Faultbox/shoreline/internal/export"
	"github.com/Faultbox/shoreline/internal/logger"
	"github.com/Faultbox/shoreline/internal/picking"
	"github.com/Faultbox/shoreline/pkg/heightfield"
)

// defaultIslands is used by "new --islands" when the config lists none.
var defaultIslands = []heightfield.Bump{
	{Center: mgl32.Vec2{-8, -6}, Radius: 14, Height: 5},
	{Center: mgl32.Vec2{10, 9}, Radius: 9, Height: 4},
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "new",
		Usage:     "create a field from the terrain config",
		ArgsUsage: "<field.shf>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "islands", Usage: "raise islands from the config (or a default pair)"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if c.NArg() < 1 {
				return cli.Exit("usage: shoretool new <field.shf>", 2)
			}
			path := c.Args().First()

			f, err := heightfield.New(cfg.Terrain.FieldParams())
			if err != nil {
				return err
			}
			if c.Bool("islands") {
				bumps := cfg.Terrain.Bumps()
				if len(bumps) == 0 {
					bumps = defaultIslands
				}
				heightfield.GenerateIslands(f, bumps, cfg.Terrain.BorderBand)
			}

			if err := heightfield.SaveFile(path, f); err != nil {
				return err
			}
			logger.Info("field created",
				zap.String("path", path),
				zap.Int("resolution", f.Resolution()),
				zap.Int("chunks", f.ChunkCount()))
			return nil
		},
	}
}

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "print field and mesh statistics",
		ArgsUsage: "<field.shf>",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			path, f, err := fieldArg(c)
			if err != nil {
				return err
			}

			start := time.Now()
			g, err := openGrid(cfg, f)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)
			s := g.Stats()

			land := 0
			for _, h := range f.Values() {
				if h >= 0 {
					land++
				}
			}

			fmt.Printf("Field:      %s\n", path)
			fmt.Printf("Resolution: %d x %d (spacing %g)\n", f.Resolution(), f.Resolution(), f.CellSpacing())
			fmt.Printf("Heights:    [%g, %g]\n", f.MinHeight(), f.MaxHeight())
			fmt.Printf("Land:       %.1f%%\n", 100*float64(land)/float64(f.Resolution()*f.Resolution()))
			fmt.Printf("Chunks:     %d x %d (span %d)\n", g.ChunkCount(), g.ChunkCount(), g.Span())
			fmt.Println()
			fmt.Printf("Ground:     %d vertices, %d triangles, %d quads\n", s.GroundVertices, s.GroundTriangles, s.GroundQuads)
			fmt.Printf("Sea:        %d vertices, %d triangles, %d quads\n", s.SeaVertices, s.SeaTriangles, s.SeaQuads)
			fmt.Printf("Meshed in:  %v\n", elapsed.Round(time.Microsecond))
			return nil
		},
	}
}

func sculptCommand() *cli.Command {
	return &cli.Command{
		Name:      "sculpt",
		Usage:     "hold a tool at a position for a number of frames",
		ArgsUsage: "<field.shf>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tool", Value: "raise", Usage: "raise, lower, level, smooth or roughen"},
			&cli.Float64Flag{Name: "x", Usage: "world X of the brush"},
			&cli.Float64Flag{Name: "z", Usage: "world Z of the brush"},
			&cli.IntFlag{Name: "frames", Value: 30, Usage: "number of frames to hold"},
			&cli.Float64Flag{Name: "dt", Value: 1.0 / 60, Usage: "seconds per frame"},
			&cli.Float64Flag{Name: "size", Value: -1, Usage: "size slider in [0, 1] (default from config)"},
			&cli.Float64Flag{Name: "intensity", Value: -1, Usage: "intensity slider in [0, 1] (default from config)"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output path (default overwrites input)"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			path, f, err := fieldArg(c)
			if err != nil {
				return err
			}
			kind, err := brush.ParseToolKind(c.String("tool"))
			if err != nil {
				return err
			}
			g, err := openGrid(cfg, f)
			if err != nil {
				return err
			}

			s := brush.NewSculptor(f, g)
			for _, k := range brush.Tools() {
				s.SetSettings(k, cfg.Brushes.Brush(k).ToolSettings())
			}
			if err := s.SetTool(kind); err != nil {
				return err
			}
			if v := c.Float64("size"); v >= 0 {
				s.SetSize(float32(v))
			}
			if v := c.Float64("intensity"); v >= 0 {
				s.SetIntensity(float32(v))
			}

			pos := mgl32.Vec2{float32(c.Float64("x")), float32(c.Float64("z"))}
			if !s.Begin(pos) {
				return cli.Exit(fmt.Sprintf("position (%g, %g) is outside the field", pos[0], pos[1]), 1)
			}
			dt := float32(c.Float64("dt"))
			touched := heightfield.EmptyRect()
			for range c.Int("frames") {
				r, err := s.Hold(pos, dt)
				if err != nil {
					return err
				}
				touched = touched.Union(r)
			}
			s.End()

			out := c.String("out")
			if out == "" {
				out = path
			}
			if err := heightfield.SaveFile(out, f); err != nil {
				return err
			}
			logger.Info("sculpted",
				zap.Stringer("tool", kind),
				zap.Int("frames", c.Int("frames")),
				zap.Any("region", touched),
				zap.String("out", out))
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "write ground and sea meshes as Wavefront OBJ",
		ArgsUsage: "<field.shf>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output .obj path (default stdout)"},
			&cli.BoolFlag{Name: "no-sea", Usage: "skip sea meshes"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			_, f, err := fieldArg(c)
			if err != nil {
				return err
			}
			g, err := openGrid(cfg, f)
			if err != nil {
				return err
			}

			var groups []export.Group
			for _, ch := range g.Chunks() {
				groups = append(groups, export.Group{Name: fmt.Sprintf("ground_%d_%d", ch.CX, ch.CY), Mesh: &ch.Ground})
				if !c.Bool("no-sea") {
					groups = append(groups, export.Group{Name: fmt.Sprintf("sea_%d_%d", ch.CX, ch.CY), Mesh: &ch.Sea})
				}
			}

			out := c.String("out")
			if out == "" {
				return export.WriteOBJ(os.Stdout, groups)
			}
			file, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := export.WriteOBJ(file, groups); err != nil {
				file.Close()
				return err
			}
			return file.Close()
		},
	}
}

func pickCommand() *cli.Command {
	return &cli.Command{
		Name:      "pick",
		Usage:     "cast a camera ray through a pixel and report the ground hit",
		ArgsUsage: "<field.shf>",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "sx", Usage: "pixel X"},
			&cli.Float64Flag{Name: "sy", Usage: "pixel Y"},
			&cli.IntFlag{Name: "width", Value: 1280, Usage: "viewport width"},
			&cli.IntFlag{Name: "height", Value: 720, Usage: "viewport height"},
			&cli.Float64Flag{Name: "yaw", Usage: "camera yaw in degrees"},
			&cli.Float64Flag{Name: "pitch", Value: 40, Usage: "camera pitch in degrees"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			_, f, err := fieldArg(c)
			if err != nil {
				return err
			}
			g, err := openGrid(cfg, f)
			if err != nil {
				return err
			}

			cam := picking.NewOrbitCamera()
			ext := f.Extent()
			o := f.Origin()
			cam.FitToBounds(picking.AABB{
				Min: [3]float32{o[0], f.MinHeight(), o[1]},
				Max: [3]float32{o[0] + ext, f.MaxHeight(), o[1] + ext},
			})
			cam.Yaw = mgl32.DegToRad(float32(c.Float64("yaw")))
			cam.Pitch = mgl32.Clamp(mgl32.DegToRad(float32(c.Float64("pitch"))), cam.MinPitch, cam.MaxPitch)

			ray := cam.ScreenRay(float32(c.Float64("sx")), float32(c.Float64("sy")),
				float32(c.Int("width")), float32(c.Int("height")))
			hit, ch, ok := g.Raycast(ray)
			if !ok {
				fmt.Println("no ground under the cursor")
				return nil
			}

			fi, fj := f.WorldToGrid(mgl32.Vec2{hit.Point[0], hit.Point[2]})
			fmt.Printf("Hit:    (%.3f, %.3f, %.3f) at distance %.3f\n", hit.Point[0], hit.Point[1], hit.Point[2], hit.T)
			fmt.Printf("Grid:   (%.2f, %.2f)\n", fi, fj)
			fmt.Printf("Chunk:  (%d, %d) triangle %d\n", ch.CX, ch.CY, hit.Triangle)
			if hit.Point[1] < 0 {
				fmt.Println("Below sea level")
			}
			return nil
		},
	}
}
