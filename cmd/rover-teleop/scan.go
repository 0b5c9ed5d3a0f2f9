package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/hipsterbrown/feetech-servo/feetech"
	"go.bug.st/serial"

	"github.com/gwillem/roverteleop/pkg/robot"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var errNoArm = errors.New("no rover arm found")

type ScanCommand struct {
	Baud     int  `long:"baud" env:"ROVER_TELEOP_ARM_BAUD" default:"1000000" description:"Servo bus baud rate"`
	NoWiggle bool `long:"no-wiggle" description:"Do not wiggle the base joint of the chosen arm"`
}

type armInfo struct {
	port   string
	servos []feetech.FoundServo
	bus    *feetech.Bus
}

func (c *ScanCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("Rover arm scan"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━"))
	fmt.Println()

	arms, err := c.findArms()
	if err != nil {
		return err
	}
	defer func() {
		for _, a := range arms {
			a.bus.Close()
		}
	}()

	if len(arms) == 0 {
		fmt.Println("Make sure the arm is connected and powered on.")
		return errNoArm
	}

	arm := arms[0]
	if len(arms) > 1 {
		if arm, err = chooseArm(arms); err != nil {
			return err
		}
	}

	if !c.NoWiggle {
		if err := wiggle(arm); err != nil {
			return fmt.Errorf("wiggle %s: %w", arm.port, err)
		}
	}

	fmt.Println()
	fmt.Println(successStyle.Render("Arm found on " + arm.port))
	fmt.Println("Start teleoperation with: " + headerStyle.Render("rover-teleop drive --arm-port "+arm.port))
	return nil
}

func (c *ScanCommand) findArms() ([]armInfo, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}

	ids := robot.DefaultIDs()
	var arms []armInfo

	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(port, "Bluetooth") {
			continue
		}

		bus, err := robot.OpenBus(port, c.Baud, 100*time.Millisecond)
		if err != nil {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		servos, err := bus.Scan(ctx, ids[0], ids[len(ids)-1])
		cancel()

		if err != nil || !robot.IsRoverArm(servos, ids) {
			bus.Close()
			continue
		}

		fmt.Printf("  Found rover arm on %s (%d servos)\n", port, len(servos))
		arms = append(arms, armInfo{port: port, servos: servos, bus: bus})
	}

	return arms, nil
}

func chooseArm(arms []armInfo) (armInfo, error) {
	options := make([]huh.Option[int], 0, len(arms))
	for i, a := range arms {
		options = append(options, huh.NewOption(a.port, i))
	}

	var choice int
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Several arms responded. Which one should be driven?").
				Options(options...).
				Value(&choice),
		),
	)
	if err := form.Run(); err != nil {
		return armInfo{}, err
	}
	return arms[choice], nil
}

// wiggle moves the base joint a little each way and back.
func wiggle(arm armInfo) error {
	ctx := context.Background()

	var servo *feetech.Servo
	for _, s := range arm.servos {
		if s.ID == 1 {
			servo = feetech.NewServo(arm.bus, s.ID, s.Model)
			break
		}
	}
	if servo == nil {
		return errors.New("base servo not found")
	}

	origin, err := servo.Position(ctx)
	if err != nil {
		return err
	}
	if err := servo.Enable(ctx); err != nil {
		return err
	}
	defer servo.Disable(ctx)

	fmt.Printf("\n  Wiggling arm on %s...\n", arm.port)

	const amount, moveMs = 30, 500
	for _, pos := range []int{origin + amount, origin - amount, origin} {
		if err := servo.SetPositionWithTime(ctx, pos, moveMs); err != nil {
			return err
		}
		time.Sleep((moveMs + 100) * time.Millisecond)
	}
	return nil
}
