package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rithick-11/food-recommendation-system/internal/core/domain"
	"github.com/rithick-11/food-recommendation-system/internal/core/ports"
)

// AccountRegisteredMessage is published by the identity service for every new user
// Format: { "user_id": "uuid-string", "email": "string", "name": "string", "role": "PATIENT|DOCTOR|ADMIN" }
type AccountRegisteredMessage struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// deliveryOutcome decides how a delivery is settled
type deliveryOutcome int

const (
	outcomeAck deliveryOutcome = iota
	outcomeReject
	outcomeRequeue
)

// AccountConsumer consumes account registrations from RabbitMQ and provisions local accounts.
// Doctors are created pending and must be approved by an admin.
type AccountConsumer struct {
	conn           *amqp091.Connection
	channel        *amqp091.Channel
	queueName      string
	accountService ports.AccountService
	connMutex      sync.RWMutex
	reconnectCh    chan bool
	stopReconnect  chan bool
	maxRetries     int
	retryDelay     time.Duration
	consumingCtx   context.Context
	consumingMutex sync.Mutex
	isConsuming    bool
}

// NewAccountConsumer creates a new RabbitMQ consumer for account registrations
func NewAccountConsumer(rabbitMQURL string, queueName string, accountService ports.AccountService) (*AccountConsumer, error) {
	if queueName == "" {
		queueName = "accounts.registered"
	}

	consumer := &AccountConsumer{
		queueName:      queueName,
		accountService: accountService,
		maxRetries:     3,
		retryDelay:     1 * time.Second,
		reconnectCh:    make(chan bool, 1),
		stopReconnect:  make(chan bool),
	}

	if err := consumer.connect(rabbitMQURL); err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	go consumer.handleReconnection(rabbitMQURL)

	return consumer, nil
}

func (c *AccountConsumer) connect(rabbitMQURL string) error {
	var (
		conn *amqp091.Connection
		err  error
	)
	for i := 0; i < c.maxRetries; i++ {
		conn, err = amqp091.Dial(rabbitMQURL)
		if err == nil {
			break
		}
		log.Printf("Failed to connect to RabbitMQ (attempt %d/%d): %v", i+1, c.maxRetries, err)
		if i < c.maxRetries-1 {
			time.Sleep(c.retryDelay)
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
		c.queueName, // name
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

	c.connMutex.Lock()
	c.conn = conn
	c.channel = ch
	c.connMutex.Unlock()

	log.Println("Account consumer connected to RabbitMQ successfully")
	return nil
}

func (c *AccountConsumer) handleReconnection(rabbitMQURL string) {
	for {
		select {
		case <-c.reconnectCh:
			log.Println("Attempting to reconnect to RabbitMQ...")
			c.connMutex.Lock()
			if c.channel != nil && !c.channel.IsClosed() {
				c.channel.Close()
			}
			if c.conn != nil && !c.conn.IsClosed() {
				c.conn.Close()
			}
			c.connMutex.Unlock()

			if err := c.connect(rabbitMQURL); err != nil {
				log.Printf("Reconnection failed: %v", err)
				time.Sleep(5 * time.Second)
				select {
				case c.reconnectCh <- true:
				default:
				}
				continue
			}

			c.consumingMutex.Lock()
			restart := c.consumingCtx != nil && c.consumingCtx.Err() == nil && !c.isConsuming
			ctx := c.consumingCtx
			c.consumingMutex.Unlock()
			if restart {
				if err := c.StartConsuming(ctx); err != nil {
					log.Printf("Failed to restart account consumer: %v", err)
				}
			}
		case <-c.stopReconnect:
			return
		}
	}
}

// StartConsuming registers the consumer and processes deliveries in a background goroutine
func (c *AccountConsumer) StartConsuming(ctx context.Context) error {
	c.consumingMutex.Lock()
	if c.isConsuming {
		c.consumingMutex.Unlock()
		log.Println("Account consumer is already running, skipping duplicate start")
		return nil
	}
	c.isConsuming = true
	c.consumingCtx = ctx
	c.consumingMutex.Unlock()

	stopped := func() {
		c.consumingMutex.Lock()
		c.isConsuming = false
		c.consumingMutex.Unlock()
	}

	c.connMutex.RLock()
	channel := c.channel
	conn := c.conn
	c.connMutex.RUnlock()

	if channel == nil || channel.IsClosed() || conn == nil || conn.IsClosed() {
		stopped()
		return fmt.Errorf("RabbitMQ connection is closed")
	}

	// One unacknowledged message at a time
	if err := channel.Qos(1, 0, false); err != nil {
		stopped()
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	consumerTag := fmt.Sprintf("account-consumer-%d", time.Now().UnixNano())
	msgs, err := channel.Consume(
		c.queueName, // queue
		consumerTag, // consumer tag
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		stopped()
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	log.Printf("Account consumer started (tag: %s), waiting for messages on queue: %s", consumerTag, c.queueName)

	go func() {
		defer stopped()

		for {
			select {
			case <-ctx.Done():
				log.Println("Account consumer context cancelled")
				return
			case msg, ok := <-msgs:
				if !ok {
					log.Println("Account consumer channel closed, attempting reconnection...")
					select {
					case c.reconnectCh <- true:
					default:
					}
					return
				}
				c.settle(msg, c.processMessage(ctx, msg.Body))
			}
		}
	}()

	return nil
}

func (c *AccountConsumer) settle(msg amqp091.Delivery, outcome deliveryOutcome) {
	var err error
	switch outcome {
	case outcomeAck:
		err = msg.Ack(false)
	case outcomeReject:
		err = msg.Nack(false, false)
	case outcomeRequeue:
		err = msg.Nack(false, true)
	}
	if err != nil {
		log.Printf("Failed to settle account message: %v", err)
	}
}

// processMessage registers the account carried by body. Malformed messages
// are rejected; service failures are requeued for another attempt.
func (c *AccountConsumer) processMessage(ctx context.Context, body []byte) deliveryOutcome {
	var msg AccountRegisteredMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		log.Printf("Failed to unmarshal account registration: %v", err)
		return outcomeReject
	}

	userID, err := uuid.Parse(msg.UserID)
	if err != nil {
		log.Printf("Invalid account registration: user_id is not a valid UUID: %v", err)
		return outcomeReject
	}
	if !domain.ValidRole(strings.ToUpper(strings.TrimSpace(msg.Role))) {
		log.Printf("Invalid account registration: unknown role %q", msg.Role)
		return outcomeReject
	}

	account, err := c.accountService.RegisterAccount(ctx, userID, msg.Email, msg.Name, msg.Role)
	if err != nil {
		log.Printf("Failed to register account from RabbitMQ: %v", err)
		return outcomeRequeue
	}

	logEntry := map[string]interface{}{
		"event":           "account_registered",
		"account_id":      account.ID.String(),
		"role":            account.Role,
		"approval_status": string(account.ApprovalStatus),
		"timestamp":       time.Now().Format(time.RFC3339),
	}
	jsonBytes, _ := json.Marshal(logEntry)
	log.Printf("%s", string(jsonBytes))

	return outcomeAck
}

// Close closes the RabbitMQ connection and stops consuming
func (c *AccountConsumer) Close() error {
	close(c.stopReconnect)

	c.consumingMutex.Lock()
	c.isConsuming = false
	c.consumingMutex.Unlock()

	c.connMutex.Lock()
	defer c.connMutex.Unlock()

	if c.channel != nil && !c.channel.IsClosed() {
		if err := c.channel.Close(); err != nil {
			log.Printf("Error closing RabbitMQ channel: %v", err)
		}
	}
	if c.conn != nil && !c.conn.IsClosed() {
		if err := c.conn.Close(); err != nil {
			log.Printf("Error closing RabbitMQ connection: %v", err)
		}
	}

	log.Println("Account consumer closed")
	return nil
}
