package database

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/omniscale/osmwrangle/element"
)

type Config struct {
	ConnectionParams string
}

// Sink receives the records of all elements of one import.
//
// Init prepares the output tables and Begin starts writing. Write gets
// all rows of one element, so each table holds either all or none of the
// rows of an element. End completes the import, Abort stops it after an
// error. Close releases all resources and can be called after End or Abort.
type Sink interface {
	Init() error
	Begin() error
	Write(rows []element.TableRows) error
	End() error
	Abort() error
	Close() error
}

var sinks map[string]func(Config) (Sink, error)

func init() {
	sinks = make(map[string]func(Config) (Sink, error))
}

func Register(name string, f func(Config) (Sink, error)) {
	sinks[name] = f
}

func Open(conf Config) (Sink, error) {
	connType := ConnectionType(conf.ConnectionParams)
	newFunc, ok := sinks[connType]
	if !ok {
		return nil, errors.Errorf("unsupported connection type: %s", connType)
	}

	sink, err := newFunc(conf)
	if err != nil {
		return nil, err
	}
	return sink, nil
}

// ConnectionType returns the scheme of param, e.g. "csv" for "csv:/tmp/out".
func ConnectionType(param string) string {
	parts := strings.SplitN(param, ":", 2)
	return parts[0]
}

// ConnectionPath returns the part of param after the scheme.
func ConnectionPath(param string) string {
	parts := strings.SplitN(param, ":", 2)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// Column types of the output table fields.
const (
	BigInt = iota
	Integer
	Float
	Timestamp
	Text
)

var fieldTypes = map[string]int{
	"id":        BigInt,
	"uid":       BigInt,
	"changeset": BigInt,
	"node_id":   BigInt,
	"version":   Integer,
	"position":  Integer,
	"lat":       Float,
	"lon":       Float,
	"timestamp": Timestamp,
}

// FieldType returns the column type of a table field. Unknown fields are
// Text.
func FieldType(field string) int {
	if t, ok := fieldTypes[field]; ok {
		return t
	}
	return Text
}

type NullSink struct{}

func (n *NullSink) Init() error                      { return nil }
func (n *NullSink) Begin() error                     { return nil }
func (n *NullSink) Write([]element.TableRows) error { return nil }
func (n *NullSink) End() error                       { return nil }
func (n *NullSink) Abort() error                     { return nil }
func (n *NullSink) Close() error                     { return nil }

func NewNullSink(conf Config) (Sink, error) {
	return &NullSink{}, nil
}

func init() {
	Register("null", NewNullSink)
}
