// Package pubsub owns the message bus connection: an in-process
// gochannel or a RabbitMQ topic exchange.
package pubsub

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/v3/pkg/amqp"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/webitel/liveapi-bridge/config"
)

// Provider hands out publishers and subscribers for the configured driver.
type Provider struct {
	cfg    config.PubSubConfig
	logger watermill.LoggerAdapter

	channel   *gochannel.GoChannel
	publisher message.Publisher

	mu          sync.Mutex
	subscribers []message.Subscriber
}

func NewProvider(cfg *config.Config, logger watermill.LoggerAdapter) (*Provider, error) {
	p := &Provider{cfg: cfg.PubSub, logger: logger}

	switch cfg.PubSub.Driver {
	case config.PubSubAMQP:
		pub, err := amqp.NewPublisher(p.amqpConfig(true, "publisher"), logger)
		if err != nil {
			return nil, fmt.Errorf("pubsub: amqp publisher: %w", err)
		}
		p.publisher = pub
	default:
		p.channel = gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: cfg.PubSub.Buffer,
		}, logger)
		p.publisher = p.channel
	}

	return p, nil
}

func (p *Provider) Driver() string { return p.cfg.Driver }

func (p *Provider) Publisher() message.Publisher { return p.publisher }

// Subscriber returns a subscriber whose queues are named after group.
// Durable queues survive restarts and are shared by every replica
// using the same group; non-durable ones belong to one consumer.
func (p *Provider) Subscriber(group string, durable bool) (message.Subscriber, error) {
	if p.channel != nil {
		return sharedChannel{p.channel}, nil
	}

	sub, err := amqp.NewSubscriber(p.amqpConfig(durable, group), p.logger)
	if err != nil {
		return nil, fmt.Errorf("pubsub: amqp subscriber %s: %w", group, err)
	}

	p.mu.Lock()
	p.subscribers = append(p.subscribers, sub)
	p.mu.Unlock()

	return sub, nil
}

func (p *Provider) amqpConfig(durable bool, queueSuffix string) amqp.Config {
	queueName := amqp.GenerateQueueNameTopicNameWithSuffix(queueSuffix)

	var c amqp.Config
	if durable {
		c = amqp.NewDurablePubSubConfig(p.cfg.AMQPURL, queueName)
	} else {
		c = amqp.NewNonDurablePubSubConfig(p.cfg.AMQPURL, queueName)
	}

	// [TOPIC_EXCHANGE] one exchange, topics become routing keys
	exchange := p.cfg.Exchange
	c.Exchange = amqp.ExchangeConfig{
		GenerateName: func(string) string { return exchange },
		Type:         "topic",
		Durable:      true,
	}
	c.Publish.GenerateRoutingKey = func(topic string) string { return topic }
	c.QueueBind.GenerateRoutingKey = func(topic string) string { return topic }

	return c
}

func (p *Provider) Close() error {
	p.mu.Lock()
	subs := p.subscribers
	p.subscribers = nil
	p.mu.Unlock()

	var errs []error
	for _, s := range subs {
		errs = append(errs, s.Close())
	}
	errs = append(errs, p.publisher.Close())

	return errors.Join(errs...)
}

// sharedChannel lets many consumers subscribe to the one GoChannel while
// keeping its lifetime owned by the Provider.
type sharedChannel struct {
	ch *gochannel.GoChannel
}

func (s sharedChannel) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return s.ch.Subscribe(ctx, topic)
}

func (s sharedChannel) Close() error { return nil }
