// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/panorama_navigator/internal/config"
	"github.com/relabs-tech/panorama_navigator/internal/sensor"
)

// publishSample publishes one orientation and one motion sample on their
// topics, in the payload shape the viewer decodes.
func publishSample(client mqtt.Client, cfg *config.Config, o sensor.OrientationSample, m sensor.MotionSample) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return err
	}
	if token := client.Publish(cfg.TopicOrientation, 0, false, payload); token.Wait() && token.Error() != nil {
		return token.Error()
	}

	payload, err = json.Marshal(m)
	if err != nil {
		return err
	}
	if token := client.Publish(cfg.TopicMotion, 0, false, payload); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	return nil
}

// RunProducer publishes mock handheld samples until interrupted.
func RunProducer() error {
	cfg := config.Get()
	if cfg.MQTTBroker == "" {
		return errors.New("MQTT_BROKER is not set")
	}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDProducer)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src := sensor.NewMockSource()
	ticker := time.NewTicker(time.Duration(cfg.ProducerInterval) * time.Millisecond)
	defer ticker.Stop()

	log.Println("producer: connected to MQTT, starting publish loop")

	var published int
	for {
		select {
		case <-ctx.Done():
			log.Printf("producer: shutting down after %d samples", published)
			return nil
		case t := <-ticker.C:
			o, m, err := src.Next()
			if err != nil {
				log.Printf("producer: error from mock source: %v", err)
				continue
			}
			if err := publishSample(client, cfg, o, m); err != nil {
				log.Printf("producer: MQTT publish error: %v", err)
				continue
			}
			published++
			if published%50 == 0 {
				log.Printf("%s tick: alpha=%.2f beta=%.2f gamma=%.2f | zAcc=%.2f gammaRate=%.2f",
					t.Format(time.RFC3339),
					o.Alpha, o.Beta, o.Gamma,
					m.AccelerationIncludingGravity.Z, m.RotationRate.Gamma,
				)
			}
		}
	}
}
