// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strings"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"
)

// Proprietary sentence types streamed by the handheld controller firmware.
//
//	$PSNSO,<alpha>,<beta>,<gamma>*hh
//	$PSNSM,<rateAlpha>,<rateBeta>,<rateGamma>,<ax>,<ay>,<az>*hh
const (
	TypeOrientation = "SNSO"
	TypeMotion      = "SNSM"
)

// OrientationSentence is a parsed $PSNSO sentence.
type OrientationSentence struct {
	nmea.BaseSentence
	Sample OrientationSample
}

// MotionSentence is a parsed $PSNSM sentence.
type MotionSentence struct {
	nmea.BaseSentence
	Sample MotionSample
}

// optionalFloat reads field i, treating a missing trailing field like an empty
// one. NaN and Inf read as 0.
func optionalFloat(p *nmea.Parser, s nmea.BaseSentence, i int, context string) float64 {
	if i >= len(s.Fields) {
		return 0
	}
	v := p.Float64(i, context)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func parseOrientationSentence(s nmea.BaseSentence) (nmea.Sentence, error) {
	p := nmea.NewParser(s)
	m := OrientationSentence{
		BaseSentence: s,
		Sample: OrientationSample{
			Alpha: optionalFloat(p, s, 0, "alpha"),
			Beta:  optionalFloat(p, s, 1, "beta"),
			Gamma: optionalFloat(p, s, 2, "gamma"),
		},
	}
	return m, p.Err()
}

func parseMotionSentence(s nmea.BaseSentence) (nmea.Sentence, error) {
	p := nmea.NewParser(s)
	m := MotionSentence{
		BaseSentence: s,
		Sample: MotionSample{
			RotationRate: RotationRate{
				Alpha: optionalFloat(p, s, 0, "rate alpha"),
				Beta:  optionalFloat(p, s, 1, "rate beta"),
				Gamma: optionalFloat(p, s, 2, "rate gamma"),
			},
			AccelerationIncludingGravity: Acceleration{
				X: optionalFloat(p, s, 3, "accel x"),
				Y: optionalFloat(p, s, 4, "accel y"),
				Z: optionalFloat(p, s, 5, "accel z"),
			},
		},
	}
	return m, p.Err()
}

// splitPrefix separates the "P" proprietary talker from the sentence type.
func splitPrefix(prefix string) (string, string, error) {
	if prefix == "" {
		return "", "", errors.New("empty sentence prefix")
	}
	if prefix[0] == 'P' {
		return "P", prefix[1:], nil
	}
	if len(prefix) < 3 {
		return "", "", fmt.Errorf("sentence prefix %q too short", prefix)
	}
	return prefix[:2], prefix[2:], nil
}

// NewSentenceParser returns a go-nmea parser that understands the controller sentences.
func NewSentenceParser() *nmea.SentenceParser {
	return &nmea.SentenceParser{
		ParsePrefix: splitPrefix,
		CustomParsers: map[string]nmea.ParserFunc{
			TypeOrientation: parseOrientationSentence,
			TypeMotion:      parseMotionSentence,
		},
	}
}

// ReadNMEA reads sentences from r until ctx is done or r fails, writing every
// orientation and motion sentence into state. Unparseable lines are skipped.
func ReadNMEA(ctx context.Context, r io.Reader, state *State) error {
	parser := NewSentenceParser()
	reader := bufio.NewReader(r)
	var parseErrors int

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" && strings.HasPrefix(line, "$") {
			sentence, perr := parser.Parse(line)
			switch {
			case perr != nil:
				// noisy links produce partial sentences; report the first and every 100th
				if parseErrors%100 == 0 {
					log.Printf("nmea: parse error: %v (line: %q)", perr, line)
				}
				parseErrors++
			default:
				switch m := sentence.(type) {
				case OrientationSentence:
					state.SetOrientation(m.Sample)
				case MotionSentence:
					state.SetMotion(m.Sample)
				}
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("nmea read: %w", err)
		}
	}
}

// OpenSerial opens the handheld controller's serial port.
func OpenSerial(port string, baud int) (io.ReadWriteCloser, error) {
	opts := serial.OpenOptions{
		PortName:              port,
		BaudRate:              uint(baud),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
	rw, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open sensor serial port %s: %w", port, err)
	}
	return rw, nil
}
