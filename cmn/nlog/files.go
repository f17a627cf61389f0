/*
 * Copyright (c) 2023, NVIDIA CORPORATION. All rights reserved.
 */
package nlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	logDir, aisrole string
	title           string

	toStderr, alsoToStderr bool

	host string
	pid  = os.Getpid()

	onceInitFiles sync.Once
)

var sevText = [...]string{sevInfo: "INFO", sevWarn: "WARNING", sevErr: "ERROR"}

func initFiles() {
	if h, err := os.Hostname(); err == nil {
		host = h
	} else {
		host = "localhost"
	}
	if logDir == "" {
		logDir = os.TempDir()
	}
	os.MkdirAll(logDir, 0o755)
}

// sname is the process-identifying component of a log file name, e.g.
// "graphtool" or "graphtool.r0" when a cluster role/rank has been set.
func sname() string {
	exe := filepath.Base(os.Args[0])
	if aisrole != "" {
		return exe + "." + aisrole
	}
	return exe
}

func logfname(tag string, t time.Time) (name string) {
	return fmt.Sprintf("%s.%s.%s.%02d%02d-%02d%02d%02d.%d.log",
		sname(), host, tag, t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), pid)
}

func fcreate(tag string, t time.Time) (*os.File, error) {
	onceInitFiles.Do(initFiles)
	p := filepath.Join(logDir, logfname(tag, t))
	return os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
