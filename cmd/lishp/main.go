package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/peterh/liner"
	log "github.com/sirupsen/logrus"

	"github.com/JerryNyoike/lishp"
)

const prompt = "lishp> "

// rep reads, evaluates and prints one line.
func rep(ev *lishp.Evaluator, line string) string {
	val, err := ev.EvalString(line)
	if err != nil {
		var pe *lishp.ParseError
		if errors.As(err, &pe) {
			return pe.Error()
		}
		return err.Error()
	}
	return val.String()
}

func loadHistory(line *liner.State, path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	if _, err := line.ReadHistory(f); err != nil {
		log.Warnf("read history %s: %v", path, err)
	}
}

func saveHistory(line *liner.State, path string) {
	f, err := os.Create(path)
	if err != nil {
		log.Warnf("write history %s: %v", path, err)
		return
	}
	defer f.Close()
	if _, err := line.WriteHistory(f); err != nil {
		log.Warnf("write history %s: %v", path, err)
	}
}

func repl(ev *lishp.Evaluator, historyPath string) {
	fmt.Println("Lishp Version 0.0.1")
	fmt.Println("Press Ctrl+c to exit.")

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	loadHistory(line, historyPath)
	defer saveHistory(line, historyPath)

	for {
		input, err := line.Prompt(prompt)
		if err == liner.ErrPromptAborted {
			return
		}
		if err == io.EOF {
			fmt.Println()
			return
		}
		if err != nil {
			log.Errorf("read line: %v", err)
			return
		}
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		fmt.Println(rep(ev, input))
	}
}

func main() {
	expr := flag.String("e", "", "evaluate `expr`, print the result and exit")
	flag.Parse()

	cfg := lishp.ConfigFromEnv()
	if err := cfg.SetupLogging(); err != nil {
		log.Fatalf("bad LISHP_LOG_LEVEL %q: %v", cfg.LogLevel, err)
	}

	ev := lishp.NewEvaluator()
	if *expr != "" {
		fmt.Println(rep(ev, *expr))
		return
	}
	repl(ev, filepath.Join(cfg.Dir, ".lishp_history"))
}
