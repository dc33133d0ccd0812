package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
	"github.com/rithick-11/food-recommendation-system/internal/core/ports"
	"github.com/sony/gobreaker"
)

// MealPlanGeneratedEventType is the event_type of plan creation events
const MealPlanGeneratedEventType = "meal_plan.generated"

// RabbitMQPublisher implements MealPlanEventPublisher for publishing plan events to RabbitMQ
// Includes retry logic and circuit breaker for resilience
type RabbitMQPublisher struct {
	conn          *amqp091.Connection
	channel       *amqp091.Channel
	queueName     string
	cb            *gobreaker.CircuitBreaker
	maxRetries    int
	retryDelay    time.Duration
	connMutex     sync.RWMutex
	reconnectCh   chan bool
	stopReconnect chan bool
}

// MealPlanGeneratedEvent is published after a plan has been stored.
// It carries identifiers and totals only; consumers fetch the plan itself over HTTP.
type MealPlanGeneratedEvent struct {
	EventType         string        `json:"event_type"`
	PlanID            uuid.UUID     `json:"plan_id"`
	PatientID         uuid.UUID     `json:"patient_id"`
	GeneratedBy       uuid.UUID     `json:"generated_by"`
	DayCount          int           `json:"day_count"`
	Source            domain.Source `json:"source"`
	TotalCaloriesKcal float64       `json:"total_calories_kcal"`
	GeneratedAt       time.Time     `json:"generated_at"`
	Timestamp         time.Time     `json:"timestamp"`
}

// NewMealPlanGeneratedEvent builds the event for a stored plan
func NewMealPlanGeneratedEvent(plan *domain.MealPlan, now time.Time) MealPlanGeneratedEvent {
	return MealPlanGeneratedEvent{
		EventType:         MealPlanGeneratedEventType,
		PlanID:            plan.ID,
		PatientID:         plan.PatientID,
		GeneratedBy:       plan.GeneratedBy,
		DayCount:          plan.DayCount,
		Source:            plan.Source,
		TotalCaloriesKcal: plan.Summary.TotalCaloriesKcal,
		GeneratedAt:       plan.GeneratedAt,
		Timestamp:         now,
	}
}

// NewRabbitMQPublisher creates a new RabbitMQ publisher with circuit breaker
func NewRabbitMQPublisher(rabbitMQURL string, queueName string) (*RabbitMQPublisher, error) {
	if queueName == "" {
		queueName = "meal_plan_events"
	}

	publisher := &RabbitMQPublisher{
		queueName:     queueName,
		maxRetries:    3,
		retryDelay:    1 * time.Second,
		reconnectCh:   make(chan bool, 1),
		stopReconnect: make(chan bool),
	}

	settings := gobreaker.Settings{
		Name:        "rabbitmq-meal-plan-events",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	}
	publisher.cb = gobreaker.NewCircuitBreaker(settings)

	if err := publisher.connect(rabbitMQURL); err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	go publisher.handleReconnection(rabbitMQURL)

	return publisher, nil
}

// connect establishes connection to RabbitMQ and declares the event queue
func (p *RabbitMQPublisher) connect(rabbitMQURL string) error {
	var (
		conn *amqp091.Connection
		err  error
	)
	for i := 0; i < p.maxRetries; i++ {
		conn, err = amqp091.Dial(rabbitMQURL)
		if err == nil {
			break
		}
		log.Printf("Failed to connect to RabbitMQ (attempt %d/%d): %v", i+1, p.maxRetries, err)
		if i < p.maxRetries-1 {
			time.Sleep(p.retryDelay)
		}
	}
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}

	// Declare queue (idempotent)
	_, err = ch.QueueDeclare(
		p.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return err
	}

	p.connMutex.Lock()
	p.conn = conn
	p.channel = ch
	p.connMutex.Unlock()

	log.Printf("Connected to RabbitMQ, publishing to queue %s", p.queueName)
	return nil
}

// handleReconnection handles automatic reconnection to RabbitMQ
func (p *RabbitMQPublisher) handleReconnection(rabbitMQURL string) {
	for {
		select {
		case <-p.reconnectCh:
			log.Println("Attempting to reconnect to RabbitMQ...")
			p.connMutex.Lock()
			if p.channel != nil {
				p.channel.Close()
			}
			if p.conn != nil {
				p.conn.Close()
			}
			p.connMutex.Unlock()

			if err := p.connect(rabbitMQURL); err != nil {
				log.Printf("Reconnection failed: %v", err)
			}
		case <-p.stopReconnect:
			return
		}
	}
}

// PublishMealPlanGenerated publishes a meal_plan.generated event
func (p *RabbitMQPublisher) PublishMealPlanGenerated(ctx context.Context, plan *domain.MealPlan) error {
	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.publishWithRetry(ctx, NewMealPlanGeneratedEvent(plan, time.Now().UTC()))
	})
	return err
}

func (p *RabbitMQPublisher) publishWithRetry(ctx context.Context, event MealPlanGeneratedEvent) error {
	logEntry := map[string]interface{}{
		"event":      "mealplan_event_publish_attempt",
		"event_type": event.EventType,
		"plan_id":    event.PlanID.String(),
		"patient_id": event.PatientID.String(),
		"source":     string(event.Source),
		"timestamp":  time.Now().Format(time.RFC3339),
	}
	jsonBytes, _ := json.Marshal(logEntry)
	log.Printf("%s", string(jsonBytes))

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal meal plan event: %w", err)
	}

	var lastErr error
	for i := 0; i < p.maxRetries; i++ {
		p.connMutex.RLock()
		ch := p.channel
		conn := p.conn
		p.connMutex.RUnlock()

		if ch == nil || conn == nil || conn.IsClosed() {
			select {
			case p.reconnectCh <- true:
			default:
			}
			lastErr = fmt.Errorf("rabbitmq connection is closed")
			time.Sleep(p.retryDelay)
			continue
		}

		err = ch.PublishWithContext(
			ctx,
			"",          // exchange
			p.queueName, // routing key
			false,       // mandatory
			false,       // immediate
			amqp091.Publishing{
				ContentType:  "application/json",
				Type:         event.EventType,
				MessageId:    event.PlanID.String(),
				Body:         body,
				DeliveryMode: amqp091.Persistent,
				Timestamp:    event.Timestamp,
			},
		)
		if err == nil {
			return nil
		}

		lastErr = err
		log.Printf("Failed to publish meal plan event (attempt %d/%d): %v", i+1, p.maxRetries, err)

		if i < p.maxRetries-1 {
			select {
			case p.reconnectCh <- true:
			default:
			}
			time.Sleep(p.retryDelay)
		}
	}

	return fmt.Errorf("failed to publish meal plan event after %d retries: %w", p.maxRetries, lastErr)
}

// Close closes the RabbitMQ connection
func (p *RabbitMQPublisher) Close() error {
	close(p.stopReconnect)
	p.connMutex.Lock()
	defer p.connMutex.Unlock()

	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

var _ ports.MealPlanEventPublisher = (*RabbitMQPublisher)(nil)
