package main

import (
	"encoding/json"
	"math/rand"
	"os"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/evroutex/fleet-dispatch/internal/ingest"
)

// The simulator publishes randomized vehicle stats for a set of vehicle
// numbers, standing in for on-vehicle telemetry clients during local
// runs. Drivers for these vehicles must be registered and logged in for
// the server to pick the payloads up.

type vehicleState struct {
	vehicleNo string
	temp      float64
	load      float64
	battery   float64
}

func (s *vehicleState) step() {
	s.temp += (rand.Float64()*2 - 1) * 0.8
	s.load += (rand.Float64()*2 - 1) * 5
	s.battery -= rand.Float64() * 0.5

	if s.load < 0 {
		s.load = 0
	}
	if s.battery < 5 {
		s.battery = 100
	}
}

func (s *vehicleState) payload() ingest.StatsPayload {
	return ingest.StatsPayload{
		VehicleNo: s.vehicleNo,
		Temp:      s.temp,
		Load:      s.load,
		Battery:   s.battery,
	}
}

func main() {
	broker := os.Getenv("MQTT_BROKER")
	if broker == "" {
		broker = "tcp://localhost:1883"
	}
	topic := os.Getenv("MQTT_TOPIC")
	if topic == "" {
		topic = "fleet/stats"
	}
	vehicles := strings.Split(os.Getenv("VEHICLE_NOS"), ",")
	if len(vehicles) == 1 && vehicles[0] == "" {
		vehicles = []string{"KA01AB1234", "KA02CD5678"}
	}

	interval := 2 * time.Second
	if v := os.Getenv("SIM_TICK"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			interval = parsed
		}
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID("fleet-dispatch-simulator")
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.WithError(token.Error()).Fatal("Failed to connect to MQTT broker")
	}
	defer client.Disconnect(250)

	states := make([]*vehicleState, 0, len(vehicles))
	for _, v := range vehicles {
		states = append(states, &vehicleState{
			vehicleNo: strings.TrimSpace(v),
			temp:      20 + rand.Float64()*10,
			load:      100 + rand.Float64()*200,
			battery:   50 + rand.Float64()*50,
		})
	}

	log.WithFields(log.Fields{
		"broker":   broker,
		"topic":    topic,
		"vehicles": len(states),
		"interval": interval,
	}).Info("Starting stats simulation")

	tick := time.NewTicker(interval)
	defer tick.Stop()
	for range tick.C {
		for _, s := range states {
			s.step()
			data, err := json.Marshal(s.payload())
			if err != nil {
				log.WithError(err).Error("Failed to marshal stats payload")
				continue
			}
			token := client.Publish(topic, 1, false, data)
			token.Wait()
			if err := token.Error(); err != nil {
				log.WithError(err).WithField("vehicle_no", s.vehicleNo).Error("Failed to publish stats")
				continue
			}
			log.WithField("vehicle_no", s.vehicleNo).Info("Published stats")
		}
	}
}
