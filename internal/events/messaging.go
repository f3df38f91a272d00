package events

import (
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange         = "storefront.events"
	OrderCreatedRoutingKey = "order.created.v1"
)

func declareEventsExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}

// MustDialRabbit connects to RabbitMQ, retrying briefly so the service
// survives a broker that is still starting.
func MustDialRabbit(url string) *amqp.Connection {
	var conn *amqp.Connection
	var err error
	for i := 0; i < 10; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn
		}
		time.Sleep(2 * time.Second)
	}
	log.Fatalf("connect rabbitmq: %v", err)
	return nil
}
