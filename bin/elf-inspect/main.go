package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/pattyshack/elfhdr/config"
	"github.com/pattyshack/elfhdr/elf"
)

type session struct {
	source  string
	buffer  *elf.Buffer
	decoder *elf.Decoder
	config  config.Config
	logger  log.Logger
}

type command struct {
	name        string
	description string
	run         func(*session, []string) error
}

var (
	commands []command
)

func init() {
	// The table is ordered by priority since commands are prefix matched.
	commands = []command{
		{
			name:        "header",
			description: "decode and print the elf header",
			run:         printHeader,
		},
		{
			name:        "segments",
			description: "decode and print the program header table",
			run:         printSegments,
		},
		{
			name:        "print",
			description: "print the full report [text|yaml]",
			run:         printReport,
		},
		{
			name:        "disassemble",
			description: "disassemble instructions [address] [count]",
			run:         disassemble,
		},
		{
			name:        "tell",
			description: "print the cursor position",
			run:         tell,
		},
		{
			name:        "remaining",
			description: "print the number of bytes after the cursor",
			run:         remaining,
		},
		{
			name:        "seek",
			description: "move the cursor <offset>",
			run:         seek,
		},
		{
			name:        "reset",
			description: "move the cursor to the start of the buffer",
			run:         reset,
		},
		{
			name:        "peek",
			description: "print the byte at the cursor",
			run:         peek,
		},
		{
			name:        "read",
			description: "read and dump bytes from the cursor [count]",
			run:         read,
		},
		{
			name:        "help",
			description: "list commands",
			run:         help,
		},
	}
}

func help(*session, []string) error {
	for _, cmd := range commands {
		fmt.Printf("  %-12s %s\n", cmd.name, cmd.description)
	}
	fmt.Printf("  %-12s %s\n", "quit", "exit the inspector")
	return nil
}

func main() {
	configPath := ""
	flag.StringVar(&configPath, "config", "", "yaml config file")

	logLevel := ""
	flag.StringVar(&logLevel, "log.level", "", "debug, info, warn, error or none")

	flag.Parse()
	args := flag.Args()
	if len(args) != 1 {
		fmt.Println("USAGE: elf-inspect [flags] <file>")
		os.Exit(2)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		panic(err)
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
		err = cfg.Validate()
		if err != nil {
			panic(err)
		}
	}

	logger := cfg.NewLogger(os.Stderr)

	buffer, err := cfg.NewBuffer()
	if err != nil {
		panic(err)
	}
	defer buffer.Release()

	err = buffer.FillFromPath(args[0])
	if err != nil {
		level.Error(logger).Log("msg", "failed to read file", "err", err)
		os.Exit(1)
	}

	level.Info(logger).Log(
		"msg", "loaded file",
		"path", args[0],
		"size", buffer.Size(),
		"elf", buffer.IsElf())

	s := &session{
		source:  args[0],
		buffer:  buffer,
		decoder: cfg.NewDecoder(),
		config:  cfg,
		logger:  logger,
	}

	rl, err := readline.New("elf > ")
	if err != nil {
		panic(err)
	}
	defer rl.Close()

	lastLine := ""
	for {
		line, err := rl.Readline()
		if err != nil {
			if err == io.EOF || err == readline.ErrInterrupt {
				break
			}
			panic(err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			line = lastLine
		}
		lastLine = line

		if line == "" {
			continue
		}

		args := strings.Fields(line)
		if strings.HasPrefix("quit", args[0]) {
			break
		}

		found := false
		for _, cmd := range commands {
			if strings.HasPrefix(cmd.name, args[0]) {
				found = true
				err := cmd.run(s, args[1:])
				if err != nil {
					level.Error(logger).Log(
						"msg", "command failed",
						"command", cmd.name,
						"err", err)
				}
				break
			}
		}

		if !found {
			fmt.Println("invalid command:", args[0])
		}
	}
}
