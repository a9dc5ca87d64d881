package app

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/panorama_navigator/internal/config"
	"github.com/relabs-tech/panorama_navigator/internal/pick"
)

func frameConsoleHandler(w io.Writer) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		var v frameView
		if err := json.Unmarshal(msg.Payload(), &v); err != nil {
			log.Printf("console: frame unmarshal error: %v", err)
			return
		}
		printFrame(w, v)
	}
}

func pickConsoleHandler(w io.Writer) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		var r pick.Result
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Printf("console: pick unmarshal error: %v", err)
			return
		}
		printPick(w, r)
	}
}

// RunConsoleMQTT prints the viewer's frames and picks as they are published.
func RunConsoleMQTT() error {
	cfg := config.Get()
	if cfg.MQTTBroker == "" {
		return errors.New("MQTT_BROKER is not set")
	}

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribe(client, cfg.TopicFrame, frameConsoleHandler(os.Stdout)); err != nil {
		return err
	}
	if err := subscribe(client, cfg.TopicPick, pickConsoleHandler(os.Stdout)); err != nil {
		return err
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	return nil
}
