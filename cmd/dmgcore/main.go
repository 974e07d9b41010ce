package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/profile"
	"github.com/urfave/cli"

	dmgcore "github.com/halfcarry/dmg-core"
)

func main() {
	app := cli.NewApp()
	app.Name = "dmgcore"
	app.Description = "A headless DMG Game Boy core"
	app.Usage = "dmgcore --rom <path> [options]"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "boot",
			Usage: "Path to an optional boot ROM image",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run; 0 runs until a Blargg Passed/Failed marker or a 600-frame safety cap",
			Value: 0,
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without a graphical front end (the only mode this core supports)",
		},
		cli.StringFlag{
			Name:  "cpuprofile",
			Usage: "Write a CPU profile to this directory while the run loop executes",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("dmgcore run failed", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		cli.ShowAppHelp(c)
		return errors.New("no ROM path provided")
	}

	if c.String("cpuprofile") != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(c.String("cpuprofile"))).Stop()
	}

	romBytes, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("failed to read ROM: %w", err)
	}

	var bootBytes []byte
	if bootPath := c.String("boot"); bootPath != "" {
		bootBytes, err = os.ReadFile(bootPath)
		if err != nil {
			return fmt.Errorf("failed to read boot ROM: %w", err)
		}
	}

	emu, err := dmgcore.New(romBytes, bootBytes)
	if err != nil {
		return fmt.Errorf("failed to construct emulator: %w", err)
	}

	frames := c.Int("frames")
	if frames > 0 {
		for i := 0; i < frames; i++ {
			emu.RunFrame()
		}
		fmt.Println(emu.SerialLog())
		return nil
	}

	return runUntilMarker(emu)
}

// runUntilMarker drives the core frame by frame looking for Blargg test
// ROMs' "Passed"/"Failed" convention on the serial port, bailing out after a
// generous safety cap so a ROM that never signals doesn't hang forever.
func runUntilMarker(emu *dmgcore.Emulator) error {
	const safetyCapFrames = 600

	for i := 0; i < safetyCapFrames; i++ {
		emu.RunFrame()
		log := emu.SerialLog()
		if strings.Contains(log, "Passed") || strings.Contains(log, "Failed") {
			fmt.Println(log)
			return nil
		}
	}

	fmt.Println(emu.SerialLog())
	return errors.New("no Passed/Failed marker observed within the safety cap")
}
