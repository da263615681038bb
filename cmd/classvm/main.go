// Command classvm runs and inspects Java class files.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/urfave/cli.v1"

	"github.com/daimatz/classvm/pkg/config"
	"github.com/daimatz/classvm/pkg/native"
	"github.com/daimatz/classvm/pkg/vfs"
	"github.com/daimatz/classvm/pkg/vm"
)

var (
	classPathFlag = cli.StringFlag{
		Name:  "classpath, cp",
		Usage: "class search path, separated by " + string(os.PathListSeparator),
	}
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "configuration file (default: nearest " + config.FileName + ")",
	}
	logLevelFlag = cli.StringFlag{
		Name:  "log-level",
		Usage: "debug, info, warn or error",
	}
	maxFramesFlag = cli.IntFlag{
		Name:  "max-frames",
		Usage: "maximum call depth per thread",
	}

	runCommand = cli.Command{
		Action:    run,
		Name:      "run",
		Usage:     "Run the main method of a class",
		ArgsUsage: "<MainClass>",
		Flags:     []cli.Flag{classPathFlag, configFlag, logLevelFlag, maxFramesFlag},
		Description: `
The run command loads MainClass from the class path and runs
main(String[]) on the thread "main". MainClass may be written with dots
or slashes. Flags override the configuration file.`,
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "classvm"
	app.Usage = "a Java class file interpreter"
	app.HideVersion = true
	app.Commands = []cli.Command{runCommand, dumpCommand}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads --config, or the nearest classvm.toml, and applies the
// command line overrides.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := ctx.String(configFlag.Name); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.FindAndLoad(".")
	}
	if err != nil {
		return nil, err
	}

	if ctx.IsSet("classpath") {
		cfg.VM.ClassPath = filepath.SplitList(ctx.String("classpath"))
	}
	if ctx.IsSet(logLevelFlag.Name) {
		cfg.Log.Level = ctx.String(logLevelFlag.Name)
	}
	if ctx.IsSet(maxFramesFlag.Name) {
		cfg.VM.MaxFrames = ctx.Int(maxFramesFlag.Name)
	}
	return cfg, cfg.Validate()
}

func newLogger(c config.Log) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func run(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("usage: classvm run [options] <MainClass>")
	}
	mainClass := strings.ReplaceAll(strings.TrimSuffix(ctx.Args().First(), ".class"), ".", "/")

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()
	vm.SetLogger(logger.Named("vm"))
	vfs.SetLogger(logger.Named("vfs"))

	cp, err := vm.ParseClassPath(cfg.ClassPathList(), cfg.VM.ArchiveCache)
	if err != nil {
		return err
	}
	logger.Debug("starting",
		zap.String("main", mainClass),
		zap.Strings("classpath", cfg.VM.ClassPath),
		zap.String("config", cfg.Path))

	v := vm.New(vm.Options{ClassPath: cp, MaxFrames: cfg.VM.MaxFrames})
	err = v.RunMain(mainClass)

	var ue *vm.UncaughtException
	if errors.As(err, &ue) {
		msg := native.JavaName(ue.ClassName)
		if ue.Message != "" {
			msg += ": " + ue.Message
		}
		return fmt.Errorf("Exception in thread \"main\" %s", msg)
	}
	return err
}
