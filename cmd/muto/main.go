// Command muto controls servos on a Muto baseboard over a serial link.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BillFaton/muto-link/muto"
	"github.com/BillFaton/muto-link/transports"
)

// Exit code classes: connection failures, bad arguments and timeouts are
// distinguishable by scripts.
const (
	exitFailure    = 1
	exitConnection = 2
	exitArgument   = 3
	exitTimeout    = 4
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, transports.ErrPortUnavailable),
		errors.Is(err, transports.ErrPermissionDenied),
		errors.Is(err, muto.ErrNotConnected):
		return exitConnection
	case errors.Is(err, muto.ErrInvalidParameter):
		return exitArgument
	case muto.IsTimeout(err):
		return exitTimeout
	default:
		return exitFailure
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "muto",
		Short:         "Control Muto baseboard servos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("backend", "usb", "transport backend: usb or pi")
	pf.String("port", "", "serial device (default /dev/ttyUSB0 for usb, /dev/serial0 for pi)")
	pf.Int("baud", 115200, "baud rate")
	pf.String("dir-pin", "", "direction control GPIO line, e.g. GPIO17 (pi backend only)")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")

	// Flags may also come from the environment: MUTO_PORT, MUTO_BAUD, ...
	viper.SetEnvPrefix("MUTO")
	viper.AutomaticEnv()
	viper.BindPFlags(pf)

	root.AddCommand(
		newTorqueCmd(),
		newServoCmd(),
		newReadAngleCmd(),
		newCalibrateCmd(),
		newBatteryCmd(),
		newIMUCmd(),
	)

	return root
}

func newLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", viper.GetString("log-level"), err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

func newTransport(logger *zap.Logger) (transports.Transport, error) {
	backend := viper.GetString("backend")
	port := viper.GetString("port")
	baud := viper.GetInt("baud")

	switch backend {
	case "usb":
		if port == "" {
			port = "/dev/ttyUSB0"
		}
		return transports.NewSerial(transports.SerialConfig{
			Port:     port,
			BaudRate: baud,
			Logger:   logger,
		}), nil
	case "pi":
		return transports.NewUART(transports.UARTConfig{
			Port:         port,
			BaudRate:     baud,
			DirectionPin: viper.GetString("dir-pin"),
			Logger:       logger,
		}), nil
	default:
		return nil, fmt.Errorf("unknown backend %q: use usb or pi", backend)
	}
}

// withDriver builds the transport and driver, then runs fn inside a session
// so the link is closed on every exit path.
func withDriver(fn func(ctx context.Context, d *muto.Driver) error) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	transport, err := newTransport(logger)
	if err != nil {
		return err
	}

	driver, err := muto.New(muto.Config{Transport: transport, Logger: logger})
	if err != nil {
		return err
	}

	return driver.Session(func(d *muto.Driver) error {
		return fn(context.Background(), d)
	})
}

func newTorqueCmd() *cobra.Command {
	var on, off bool

	cmd := &cobra.Command{
		Use:   "torque",
		Short: "Enable or disable servo torque",
		RunE: func(cmd *cobra.Command, args []string) error {
			if on == off {
				return errors.New("specify either --on or --off")
			}
			return withDriver(func(ctx context.Context, d *muto.Driver) error {
				if on {
					if err := d.TorqueOn(ctx); err != nil {
						return err
					}
					cmd.Println("Torque ON")
					return nil
				}
				if err := d.TorqueOff(ctx); err != nil {
					return err
				}
				cmd.Println("Torque OFF")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&on, "on", false, "turn torque on")
	cmd.Flags().BoolVar(&off, "off", false, "turn torque off")
	return cmd
}

func newServoCmd() *cobra.Command {
	var id, angle, speed int

	cmd := &cobra.Command{
		Use:   "servo",
		Short: "Move a servo to a position",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDriver(func(ctx context.Context, d *muto.Driver) error {
				if err := d.ServoMove(ctx, id, angle, speed); err != nil {
					return err
				}
				cmd.Printf("Servo %d -> %d° @ speed %d\n", id, angle, speed)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "servo id (1-255)")
	cmd.Flags().IntVar(&angle, "angle", 90, "target angle (0-180)")
	cmd.Flags().IntVar(&speed, "speed", 1000, "movement speed (0-65535)")
	cmd.MarkFlagRequired("id")
	return cmd
}

func newReadAngleCmd() *cobra.Command {
	var id int

	cmd := &cobra.Command{
		Use:   "read-angle",
		Short: "Read the current servo angle",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDriver(func(ctx context.Context, d *muto.Driver) error {
				data, err := d.ReadServoAngle(ctx, id)
				if err != nil {
					return err
				}
				cmd.Printf("Servo %d angle data: % X\n", id, data)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "servo id (1-255)")
	cmd.MarkFlagRequired("id")
	return cmd
}

func newCalibrateCmd() *cobra.Command {
	var id int
	var deviation int16

	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Set a servo position deviation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDriver(func(ctx context.Context, d *muto.Driver) error {
				if err := d.CalibrateServo(ctx, id, deviation); err != nil {
					return err
				}
				cmd.Printf("Servo %d calibrated with deviation %d\n", id, deviation)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "servo id (1-255)")
	cmd.Flags().Int16Var(&deviation, "deviation", 0, "deviation (-32768..32767)")
	cmd.MarkFlagRequired("id")
	return cmd
}

func newBatteryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "battery",
		Short: "Read the baseboard battery level",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDriver(func(ctx context.Context, d *muto.Driver) error {
				data, err := d.ReadBatteryLevel(ctx)
				if err != nil {
					return err
				}
				cmd.Printf("Battery data: % X\n", data)
				return nil
			})
		},
	}
}

func newIMUCmd() *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "imu",
		Short: "Read IMU data from the baseboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDriver(func(ctx context.Context, d *muto.Driver) error {
				if raw {
					data, err := d.ReadRawIMU(ctx)
					if err != nil {
						return err
					}
					cmd.Printf("Accel: %d %d %d\n", data.AccelX, data.AccelY, data.AccelZ)
					cmd.Printf("Gyro:  %d %d %d\n", data.GyroX, data.GyroY, data.GyroZ)
					cmd.Printf("Mag:   %d %d %d\n", data.MagX, data.MagY, data.MagZ)
					return nil
				}
				angle, err := d.ReadIMUAngle(ctx)
				if err != nil {
					return err
				}
				cmd.Printf("Roll: %d  Pitch: %d  Yaw: %d  Temp: %d\n",
					angle.Roll, angle.Pitch, angle.Yaw, angle.Temperature)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "read the 9-axis raw sensor block")
	return cmd
}
