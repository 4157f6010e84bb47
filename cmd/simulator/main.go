package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type locationMessage struct {
	OrgID      string  `json:"org_id"`
	TrackerID  string  `json:"tracker_id"`
	VehicleID  string  `json:"vehicle_id,omitempty"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Heading    float64 `json:"heading"`
	Speed      float64 `json:"speed"`
	RecordedAt int64   `json:"recorded_at"`
}

// tracker simulates one vehicle alternating between driving legs and
// stops, so the downstream trip segmentation has something realistic
// to chew on.
type tracker struct {
	trackerID string
	vehicleID string
	lat, lon  float64
	heading   float64
	speed     float64
	moving    bool
	phaseLeft int
}

func newTracker(i int) *tracker {
	return &tracker{
		trackerID: fmt.Sprintf("TRK-%04d", 1000+i),
		vehicleID: fmt.Sprintf("VEH-%04d", 1000+i),
		lat:       -6.2088 + (rand.Float64()-0.5)*0.05,
		lon:       106.8456 + (rand.Float64()-0.5)*0.05,
		heading:   rand.Float64() * 360,
		moving:    true,
		phaseLeft: 10 + rand.Intn(50),
	}
}

func (t *tracker) step(intervalSec int) {
	t.phaseLeft--
	if t.phaseLeft <= 0 {
		t.moving = !t.moving
		if t.moving {
			t.phaseLeft = 10 + rand.Intn(50)
			t.heading = rand.Float64() * 360
		} else {
			t.phaseLeft = 5 + rand.Intn(30)
		}
	}

	if !t.moving {
		t.speed = rand.Float64() * 2
		return
	}

	t.speed = 20 + rand.Float64()*60
	t.heading += (rand.Float64() - 0.5) * 20

	distKm := t.speed * float64(intervalSec) / 3600
	rad := t.heading * math.Pi / 180
	t.lat += distKm / 111.32 * math.Cos(rad)
	t.lon += distKm / (111.32 * math.Cos(t.lat*math.Pi/180)) * math.Sin(rad)
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds>\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}
	orgID := "org-demo"
	if v := os.Getenv("SIM_ORG_ID"); v != "" {
		orgID = v
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("fleet-simulator")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("mqtt connect: %v", token.Error())
	}
	defer client.Disconnect(250)

	trackers := make([]*tracker, 5)
	for i := range trackers {
		trackers[i] = newTracker(i)
	}

	log.Printf("connected to %s, publishing every %ds...", broker, intervalSec)

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		for _, t := range trackers {
			t.step(intervalSec)

			msg := locationMessage{
				OrgID:      orgID,
				TrackerID:  t.trackerID,
				VehicleID:  t.vehicleID,
				Latitude:   t.lat,
				Longitude:  t.lon,
				Heading:    math.Mod(t.heading+360, 360),
				Speed:      t.speed,
				RecordedAt: time.Now().Unix(),
			}

			payload, _ := json.Marshal(msg)
			topic := fmt.Sprintf("/fleet/tracker/%s/location", t.trackerID)

			token := client.Publish(topic, 1, false, payload)
			token.Wait()

			log.Printf("published to %s: %s", topic, payload)
		}
	}
}
