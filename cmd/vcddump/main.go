// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Command vcddump parses a VCD file and prints the ubus transaction
// trace observed on ubus_tb_top.vif, the worked example from
// internal/ubus. It is a thin demonstration program, not a general
// waveform viewer.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rob-gra/vcd"
	"github.com/rob-gra/vcd/internal/ubus"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "vcddump:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("vcddump", flag.ContinueOnError)
	hierarchy := fs.String("hierarchy", "ubus_tb_top.vif", "scope path of the bus instance to watch")
	showNets := fs.Bool("nets", false, "print every declared signal's canonical reference and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: vcddump [flags] <file.vcd>")
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer f.Close()

	p := vcd.New()
	w := ubus.NewWatcher(*hierarchy)
	p.RegisterWatcher(w)

	if err := p.Parse(f); err != nil {
		return err
	}

	if *showNets {
		p.ShowNets(os.Stdout)
		return nil
	}

	for _, event := range w.Log {
		fmt.Println(event)
	}
	return nil
}
