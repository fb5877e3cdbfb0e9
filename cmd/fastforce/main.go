package main

import (
	"fmt"
	"os"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/tscircuit/fastforce/internal/config"
	"github.com/tscircuit/fastforce/internal/engine"
	"github.com/tscircuit/fastforce/internal/export"
	"github.com/tscircuit/fastforce/internal/problem"
	"github.com/tscircuit/fastforce/internal/tui"
	"github.com/tscircuit/fastforce/internal/viz"
)

var (
	preset    string
	svgOut    string
	saveOut   string
	svgWidth  int
	svgHeight int
	plotMoves bool
	initial   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fastforce",
		Short: "force-directed relaxation for point and segment layouts",
	}

	solveCmd := &cobra.Command{
		Use:   "solve [problem.yaml]",
		Short: "relax a problem to convergence",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSolve,
	}
	solveCmd.Flags().StringVar(&preset, "preset", "", "use a built-in problem instead of a file")
	solveCmd.Flags().StringVar(&svgOut, "svg", "", "write the relaxed scene to this SVG file")
	solveCmd.Flags().BoolVar(&plotMoves, "plot", true, "plot max movement per iteration")
	solveCmd.Flags().StringVar(&saveOut, "save", "", "write the relaxed problem back out as YAML")

	renderCmd := &cobra.Command{
		Use:   "render [problem.yaml]",
		Short: "write a problem scene as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRender,
	}
	renderCmd.Flags().StringVar(&preset, "preset", "", "use a built-in problem instead of a file")
	renderCmd.Flags().StringVarP(&svgOut, "out", "o", "scene.svg", "output SVG path")
	renderCmd.Flags().IntVar(&svgWidth, "width", 800, "SVG width in pixels")
	renderCmd.Flags().IntVar(&svgHeight, "height", 600, "SVG height in pixels")
	renderCmd.Flags().BoolVar(&initial, "initial", false, "render the initial problem with clearance halos instead of solving")

	viewCmd := &cobra.Command{
		Use:   "view [problem.yaml]",
		Short: "watch the relaxation live in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runView,
	}
	viewCmd.Flags().StringVar(&preset, "preset", "", "use a built-in problem instead of a file")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in problems",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(solveCmd, renderCmd, viewCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadProblem resolves the --preset flag or the positional file argument.
func loadProblem(args []string) (string, *problem.Problem, error) {
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return "", nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		return preset, p, nil
	}
	if len(args) == 0 {
		return "", nil, fmt.Errorf("need a problem file or --preset")
	}
	p, err := config.Load(args[0])
	if err != nil {
		return "", nil, err
	}
	return args[0], p, nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	name, p, err := loadProblem(args)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}

	e := engine.New(p)
	moves := make([]float64, 0, p.Schedule.MaxSteps)

	start := time.Now()
	for !e.Solved() && e.Iterations() < p.Schedule.MaxSteps {
		e.Step()
		moves = append(moves, e.MaxMove())
	}
	elapsed := time.Since(start)

	fmt.Printf("problem: %s\n", name)
	fmt.Printf("iterations: %d\n", e.Iterations())
	fmt.Printf("solved: %v\n", e.Solved())
	fmt.Printf("progress: %.3f\n", e.Progress())
	fmt.Printf("elapsed: %v\n", elapsed)
	if !e.Solved() {
		fmt.Printf("error: step limit reached before convergence (max move %.6f)\n", e.MaxMove())
	}

	if plotMoves && len(moves) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(moves,
			asciigraph.Height(10),
			asciigraph.Width(72),
			asciigraph.Caption("max move per iteration"),
		))
	}

	fmt.Println()
	fmt.Print(viz.Render(e.Visualize(), 72, 24).String())

	if svgOut != "" {
		svg := export.SceneToSVG(e.Visualize(), 800, 600)
		if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgOut)
	}
	if saveOut != "" {
		if err := config.Save(saveOut, p); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", saveOut)
	}
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	_, p, err := loadProblem(args)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}

	e := engine.New(p)
	if !initial {
		e.Solve()
	}
	svg := export.SceneToSVG(e.Visualize(), svgWidth, svgHeight)
	if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", svgOut)
	return nil
}

func runView(cmd *cobra.Command, args []string) error {
	name, p, err := loadProblem(args)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}
	return tui.Run(name, p)
}
