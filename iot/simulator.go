// Package iot synthesizes fake energy-meter readings for occupied
// properties. In production this data would arrive from real meters; here a
// fixed-interval simulator random-walks each property's last known reading.
package iot

import (
	"context"
	"errors"
	"log"
	"math"
	"math/rand"
	"time"

	"gorm.io/gorm"

	"spms/models"
)

// Startup spike constants. Injected once, on the very first tick, so the
// alerting pipeline has something to fire on right away.
const (
	spikePowerKWh = 12
	spikeVoltageV = 240
	spikeCurrentA = 22
	spikeTempC    = 30
	spikeHumidity = 50
)

// Simulator produces one synthetic reading per occupied property per tick.
type Simulator struct {
	DB        *gorm.DB
	Notifier  Notifier
	Interval  time.Duration
	Retention time.Duration // readings older than this are purged; 0 keeps everything

	rnd       *rand.Rand
	spikeDone bool
}

func NewSimulator(db *gorm.DB, notifier Notifier, interval, retention time.Duration) *Simulator {
	if notifier == nil {
		notifier = LogNotifier{}
	}
	return &Simulator{
		DB:        db,
		Notifier:  notifier,
		Interval:  interval,
		Retention: retention,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run drives the simulator until the context is cancelled. Errors never
// stop the timer.
func (s *Simulator) Run(ctx context.Context) {
	log.Printf("iot: energy simulation running every %s for occupied properties", s.Interval)
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick generates one reading for every occupied property. Each property is
// processed independently: a persistence failure for one is logged and does
// not block the rest.
func (s *Simulator) Tick(ctx context.Context) {
	var properties []models.Property
	if err := s.DB.Where("status = ?", models.PropertyOccupied).Find(&properties).Error; err != nil {
		log.Printf("iot: failed to load occupied properties: %v", err)
		return
	}

	spike := !s.spikeDone
	if spike {
		log.Printf("iot: startup spike injected for %d occupied properties", len(properties))
	}

	processed := 0
	for i := range properties {
		if err := s.generateFor(ctx, &properties[i], spike); err != nil {
			log.Printf("iot: property %d: %v", properties[i].ID, err)
			continue
		}
		processed++
	}

	if spike {
		s.spikeDone = true
	}

	s.purgeExpired()
	log.Printf("iot: readings updated for %d properties at %s", processed, time.Now().Format(time.Kitchen))
}

func (s *Simulator) generateFor(ctx context.Context, property *models.Property, spike bool) error {
	if spike {
		return s.injectSpike(ctx, property)
	}

	last, err := s.lastReading(property.ID)
	if err != nil {
		return err
	}

	reading := s.nextReading(property.ID, last)
	return s.DB.Create(&reading).Error
}

func (s *Simulator) injectSpike(ctx context.Context, property *models.Property) error {
	now := time.Now()
	reading := models.EnergyReading{
		PropertyID: property.ID,
		PowerKWh:   spikePowerKWh,
		VoltageV:   spikeVoltageV,
		CurrentA:   spikeCurrentA,
		TempC:      spikeTempC,
		Humidity:   spikeHumidity,
		Timestamp:  now,
	}
	if err := s.DB.Create(&reading).Error; err != nil {
		return err
	}

	event := SpikeEvent{
		PropertyID:  property.ID,
		AvgKWh:      spikePowerKWh,
		AvgTemp:     spikeTempC,
		AvgHumidity: spikeHumidity,
		Timestamp:   now,
	}
	if err := s.Notifier.NotifySpike(ctx, event); err != nil {
		// Alerting is best-effort; the reading is already stored.
		log.Printf("iot: spike notification failed for property %d: %v", property.ID, err)
	}
	return nil
}

func (s *Simulator) lastReading(propertyID uint) (*models.EnergyReading, error) {
	var last models.EnergyReading
	err := s.DB.Where("property_id = ?", propertyID).Order("timestamp desc").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &last, nil
}

// nextReading random-walks the previous sample, or draws fresh values from
// the per-field baseline ranges when the property has no history yet.
func (s *Simulator) nextReading(propertyID uint, last *models.EnergyReading) models.EnergyReading {
	reading := models.EnergyReading{
		PropertyID: propertyID,
		Timestamp:  time.Now(),
	}

	if last == nil {
		reading.PowerKWh = s.uniform(2, 7)
		reading.VoltageV = s.uniform(220, 230)
		reading.CurrentA = s.uniform(10, 15)
		reading.TempC = s.uniform(22, 28)
		reading.Humidity = s.uniform(40, 60)
	} else {
		reading.PowerKWh = s.walk(last.PowerKWh, 1)
		reading.VoltageV = s.walk(last.VoltageV, 5)
		reading.CurrentA = s.walk(last.CurrentA, 2)
		reading.TempC = s.walk(last.TempC, 1.5)
		reading.Humidity = s.walk(last.Humidity, 5)
	}

	if reading.Humidity > 100 {
		reading.Humidity = 100
	}
	return reading
}

func (s *Simulator) uniform(lo, hi float64) float64 {
	return round2(lo + s.rnd.Float64()*(hi-lo))
}

// walk perturbs v by a uniform offset in [-variance, +variance], rounded to
// 2 decimals and clamped non-negative.
func (s *Simulator) walk(v, variance float64) float64 {
	next := round2(v + (s.rnd.Float64()-0.5)*2*variance)
	if next < 0 {
		return 0
	}
	return next
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// purgeExpired drops readings older than the retention window. The feed is
// a rolling window, not an archive.
func (s *Simulator) purgeExpired() {
	if s.Retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-s.Retention)
	res := s.DB.Unscoped().Where("timestamp < ?", cutoff).Delete(&models.EnergyReading{})
	if res.Error != nil {
		log.Printf("iot: failed to purge expired readings: %v", res.Error)
	}
}
