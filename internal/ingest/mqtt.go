package ingest

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/evroutex/fleet-dispatch/internal/auth"
	"github.com/evroutex/fleet-dispatch/internal/models"
	"github.com/evroutex/fleet-dispatch/internal/registry"
)

// StatsPayload is the wire shape published by on-vehicle clients.
type StatsPayload struct {
	VehicleNo string  `json:"vehicle_no"`
	Temp      float64 `json:"temp"`
	Load      float64 `json:"load"`
	Battery   float64 `json:"battery"`
}

// Ingestor subscribes to the vehicle stats topic and routes each payload
// into the live session of the matching driver. Telemetry stays
// session-scoped: payloads for vehicles without a live session are
// dropped, and nothing is persisted.
type Ingestor struct {
	client   mqtt.Client
	topic    string
	sessions *auth.SessionTable
}

// NewIngestor creates an ingestor for the given broker and topic.
func NewIngestor(broker, clientID, topic string, sessions *auth.SessionTable) *Ingestor {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.WithField("broker", broker).Info("MQTT connected")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.WithError(err).Warn("MQTT connection lost")
	})

	return &Ingestor{
		client:   mqtt.NewClient(opts),
		topic:    topic,
		sessions: sessions,
	}
}

// Start connects to the broker and subscribes to the stats topic.
func (i *Ingestor) Start() error {
	token := i.client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to MQTT broker: %w", err)
	}

	sub := i.client.Subscribe(i.topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		i.handleMessage(msg.Payload())
	})
	sub.Wait()
	if err := sub.Error(); err != nil {
		return fmt.Errorf("subscribe to %s: %w", i.topic, err)
	}

	log.WithField("topic", i.topic).Info("Telemetry ingestion started")
	return nil
}

// Stop disconnects from the broker.
func (i *Ingestor) Stop() {
	i.client.Disconnect(250)
}

func (i *Ingestor) handleMessage(payload []byte) {
	var p StatsPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		log.WithError(err).Warn("Dropping undecodable stats payload")
		return
	}

	vehicleNo := registry.Normalize(p.VehicleNo)
	session, ok := i.sessions.FindByIdentity(vehicleNo)
	if !ok || session.Role != models.RoleDriver {
		log.WithField("vehicle_no", vehicleNo).Debug("Dropping stats for vehicle with no live session")
		return
	}

	i.sessions.SetStats(session.ID, models.VehicleStats{
		Temp:    p.Temp,
		Load:    p.Load,
		Battery: p.Battery,
	})
	log.WithField("vehicle_no", vehicleNo).Debug("Updated session stats from broker")
}
