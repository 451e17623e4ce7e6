/*
Copyright 2011-2024 Frederic Langlet
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	runepress "github.com/runepress/runepress-go"
	"github.com/runepress/runepress-go/codec"
)

const (
	_APP_HEADER     = "Runepress " + runepress.Version
	_ARG_COMPRESS   = "--compress"
	_ARG_DECOMPRESS = "--decompress"
	_ARG_INPUT      = "--input="
	_ARG_OUTPUT     = "--output="
	_ARG_KEY        = "--key="
	_ARG_FIXED      = "--fixed"
	_ARG_VERBOSE    = "--verbose="
	_ARG_HELP       = "--help"
)

var (
	mutex sync.Mutex
	log   = Printer{os: bufio.NewWriter(os.Stdout)}
)

func main() {
	os.Exit(runepressApp())
}

func runepressApp() int {
	mode := "c"
	inputName := ""
	outputName := ""
	key := ""
	codecType := codec.TYPE_DYNAMIC
	verbose := 1

	args := os.Args[1:]

	for i := 0; i < len(args); i++ {
		arg := strings.TrimSpace(args[i])

		switch {
		case arg == "-h" || arg == _ARG_HELP:
			printHelp()
			return 0

		case arg == "-c" || arg == _ARG_COMPRESS:
			mode = "c"

		case arg == "-d" || arg == _ARG_DECOMPRESS:
			mode = "d"

		case arg == "-f" || arg == _ARG_FIXED:
			codecType = codec.TYPE_FIXED

		case strings.HasPrefix(arg, _ARG_INPUT):
			inputName = strings.TrimPrefix(arg, _ARG_INPUT)

		case arg == "-i":
			if i+1 == len(args) {
				fmt.Println("Missing input file name")
				return runepress.ERR_MISSING_PARAM
			}

			i++
			inputName = args[i]

		case strings.HasPrefix(arg, _ARG_OUTPUT):
			outputName = strings.TrimPrefix(arg, _ARG_OUTPUT)

		case arg == "-o":
			if i+1 == len(args) {
				fmt.Println("Missing output file name")
				return runepress.ERR_MISSING_PARAM
			}

			i++
			outputName = args[i]

		case strings.HasPrefix(arg, _ARG_KEY):
			key = strings.TrimPrefix(arg, _ARG_KEY)

		case arg == "-k":
			if i+1 == len(args) {
				fmt.Println("Missing key")
				return runepress.ERR_MISSING_PARAM
			}

			i++
			key = args[i]

		case strings.HasPrefix(arg, _ARG_VERBOSE) || arg == "-v":
			level := ""

			if arg == "-v" {
				if i+1 == len(args) {
					fmt.Println("Missing verbosity level")
					return runepress.ERR_MISSING_PARAM
				}

				i++
				level = args[i]
			} else {
				level = strings.TrimPrefix(arg, _ARG_VERBOSE)
			}

			v, err := strconv.Atoi(level)

			if err != nil || v < 0 {
				fmt.Printf("Invalid verbosity level: %v\n", level)
				return runepress.ERR_INVALID_PARAM
			}

			verbose = v

		default:
			fmt.Printf("Unknown option: %v\n", arg)
			return runepress.ERR_INVALID_PARAM
		}
	}

	log.Println(_APP_HEADER, verbose >= 1)
	text, err := readInput(inputName)

	if err != nil {
		fmt.Printf("Cannot read input: %v\n", err)
		return runepress.ERR_READ_FILE
	}

	c, err := codec.New(codecType)

	if err != nil {
		fmt.Printf("Failed to create codec: %v\n", err)
		return runepress.ERR_CREATE_CODEC
	}

	if verbose >= 2 {
		c.AddListener(&traceListener{})
	}

	before := time.Now()
	var res string

	if mode == "c" {
		res, err = c.Encode(text, key)
	} else {
		res, err = c.Decode(text, key)
	}

	if err != nil {
		fmt.Printf("An error occurred: %v\n", err)

		if ce, ok := err.(*runepress.CodecError); ok {
			return ce.ErrorCode()
		}

		return runepress.ERR_UNKNOWN
	}

	delta := time.Since(before)

	if err := writeOutput(outputName, res); err != nil {
		fmt.Printf("Cannot write output: %v\n", err)
		return runepress.ERR_WRITE_FILE
	}

	msg := fmt.Sprintf("Input size:  %d bytes", len(text))
	log.Println(msg, verbose >= 1)
	msg = fmt.Sprintf("Output size: %d bytes", len(res))
	log.Println(msg, verbose >= 1)
	msg = fmt.Sprintf("Time: %v ms", delta.Milliseconds())
	log.Println(msg, verbose >= 1)
	return 0
}

func readInput(name string) (string, error) {
	if len(name) == 0 {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}

	data, err := os.ReadFile(name)
	return string(data), err
}

func writeOutput(name string, res string) error {
	if len(name) == 0 {
		_, err := os.Stdout.WriteString(res + "\n")
		return err
	}

	return os.WriteFile(name, []byte(res), 0644)
}

func printHelp() {
	log.Println(_APP_HEADER, true)
	log.Println("", true)
	log.Println("Usage: runepress [-c|-d] [options]", true)
	log.Println("", true)
	log.Println("   -c, --compress        compact text from the input (default)", true)
	log.Println("   -d, --decompress      restore text from the input", true)
	log.Println("   -i, --input=<file>    input file (default stdin)", true)
	log.Println("   -o, --output=<file>   output file (default stdout)", true)
	log.Println("   -k, --key=<key>       scramble the output with a key", true)
	log.Println("   -f, --fixed           use the fixed dictionary variant", true)
	log.Println("   -v, --verbose=<n>     0=silent, 1=default, 2=stage events", true)
	log.Println("   -h, --help            display this message", true)
}

// traceListener prints one line per pipeline event
type traceListener struct {
}

func (this *traceListener) ProcessEvent(evt *runepress.Event) {
	log.Println(evt.String(), true)
}

// Printer a concurrently safe buffered printer
type Printer struct {
	os *bufio.Writer
}

// Println concurrently safe version (order wise) of Println
func (this *Printer) Println(msg string, printFlag bool) {
	if printFlag == true {
		mutex.Lock()

		// Best effort, ignore error
		if w, _ := this.os.Write([]byte(msg + "\n")); w > 0 {
			_ = this.os.Flush()
		}

		mutex.Unlock()
	}
}
