/*
Package logging routes log records of all components through a single broker
goroutine. Progress lines are redrawn in place and interleaved with regular
records.
*/
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

type Level int

const (
	FATAL Level = iota
	ERROR
	WARNING
	INFO
	DEBUG
)

var levelNames = map[Level]string{
	FATAL:   "fatal",
	ERROR:   "error",
	WARNING: "warn",
	INFO:    "",
	DEBUG:   "debug",
}

type Record struct {
	Level     Level
	Component string
	Message   string
}

const (
	CLEARLINE = "\x1b[2K"
)

type Logger struct {
	Component string
}

func NewLogger(component string) *Logger {
	return &Logger{component}
}

func (l *Logger) send(level Level, msg string) {
	defaultLogBroker.Records <- Record{level, l.Component, msg}
}

func (l *Logger) Print(args ...interface{}) {
	l.send(INFO, fmt.Sprint(args...))
}

func (l *Logger) Printf(msg string, args ...interface{}) {
	l.send(INFO, fmt.Sprintf(msg, args...))
}

// Fatal logs the message, flushes the broker and exits with status 1.
func (l *Logger) Fatal(args ...interface{}) {
	l.send(FATAL, fmt.Sprint(args...))
	Shutdown()
	os.Exit(1)
}

func (l *Logger) Fatalf(msg string, args ...interface{}) {
	l.send(FATAL, fmt.Sprintf(msg, args...))
	Shutdown()
	os.Exit(1)
}

func (l *Logger) Errorf(msg string, args ...interface{}) {
	l.send(ERROR, fmt.Sprintf(msg, args...))
}

func (l *Logger) Warn(args ...interface{}) {
	l.send(WARNING, fmt.Sprint(args...))
}

func (l *Logger) Warnf(msg string, args ...interface{}) {
	l.send(WARNING, fmt.Sprintf(msg, args...))
}

// Warningf, Infof and Debugf make Logger usable as badger.Logger.
func (l *Logger) Warningf(msg string, args ...interface{}) {
	l.send(WARNING, fmt.Sprintf(msg, args...))
}

func (l *Logger) Infof(msg string, args ...interface{}) {
	l.send(INFO, fmt.Sprintf(msg, args...))
}

func (l *Logger) Debugf(msg string, args ...interface{}) {
	if !defaultLogBroker.debug.Load() {
		return
	}
	l.send(DEBUG, fmt.Sprintf(msg, args...))
}

func (l *Logger) StartStep(msg string) string {
	defaultLogBroker.StepStart <- Step{l.Component, msg}
	return msg
}

func (l *Logger) StopStep(msg string) {
	defaultLogBroker.StepStop <- Step{l.Component, msg}
}

func Progress(msg string) {
	defaultLogBroker.Progress <- msg
}

func SetQuiet(quiet bool) {
	defaultLogBroker.quiet.Store(quiet)
}

func SetDebug(debug bool) {
	defaultLogBroker.debug.Store(debug)
}

type Step struct {
	Component string
	Name      string
}

type LogBroker struct {
	Records      chan Record
	Progress     chan string
	StepStart    chan Step
	StepStop     chan Step
	out          io.Writer
	quiet        atomic.Bool
	debug        atomic.Bool
	quit         chan bool
	wg           *sync.WaitGroup
	newline      bool
	lastProgress string
}

func (l *LogBroker) loop() {
	steps := make(map[Step]time.Time)
For:
	for {
		select {
		case record := <-l.Records:
			l.printRecord(record)
		case progress := <-l.Progress:
			if !l.quiet.Load() {
				l.printProgress(progress)
			}
		case step := <-l.StepStart:
			steps[step] = time.Now()
			if !l.quiet.Load() {
				l.printProgress(step.Name)
			}
		case step := <-l.StepStop:
			startTime := steps[step]
			delete(steps, step)
			duration := time.Since(startTime)
			l.printRecord(Record{INFO, step.Component, step.Name + " took: " + duration.String()})
		case <-l.quit:
			break For
		}
	}
Flush:
	// after quit, print all records from chan
	for {
		select {
		case record := <-l.Records:
			l.printRecord(record)
		default:
			break Flush
		}
	}
	if !l.newline {
		fmt.Fprintln(l.out)
	}
	l.wg.Done()
}

func (l *LogBroker) printPrefix() {
	fmt.Fprint(l.out, "[", time.Now().Format(time.Stamp), "] ")
}

func (l *LogBroker) printRecord(record Record) {
	if !l.newline {
		fmt.Fprint(l.out, CLEARLINE)
	}
	l.printPrefix()
	if name := levelNames[record.Level]; name != "" {
		fmt.Fprint(l.out, "[", name, "] ")
	}
	if record.Component != "" {
		fmt.Fprint(l.out, "[", record.Component, "] ")
	}
	fmt.Fprintln(l.out, record.Message)
	l.newline = true
	if l.lastProgress != "" && !l.quiet.Load() {
		l.printProgress(l.lastProgress)
	}
}

func (l *LogBroker) printProgress(progress string) {
	l.printPrefix()
	fmt.Fprint(l.out, progress, "\r")
	l.lastProgress = progress
	l.newline = false
}

var shutdownOnce sync.Once

// Shutdown prints all pending records and stops the broker. Records logged
// after Shutdown block forever.
func Shutdown() {
	shutdownOnce.Do(defaultLogBroker.shutdown)
}

func (l *LogBroker) shutdown() {
	l.quit <- true
	l.wg.Wait()
}

func newLogBroker(out io.Writer) *LogBroker {
	l := &LogBroker{
		Records:   make(chan Record, 8),
		Progress:  make(chan string),
		StepStart: make(chan Step),
		StepStop:  make(chan Step),
		out:       out,
		quit:      make(chan bool),
		wg:        &sync.WaitGroup{},
		newline:   true,
	}
	l.wg.Add(1)
	go l.loop()
	return l
}

var defaultLogBroker *LogBroker

func init() {
	defaultLogBroker = newLogBroker(os.Stderr)
}
