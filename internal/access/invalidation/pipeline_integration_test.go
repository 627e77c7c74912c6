//go:build integration

package invalidation_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	memorycache "commune/internal/access/cache/memory"
	"commune/internal/access/invalidation"
	"commune/internal/access/models"
	"commune/internal/platform/config"
	"commune/internal/platform/kafka"
	id "commune/pkg/domain"
	"commune/pkg/testutil/containers"
)

// PipelineSuite exercises the full revocation path: a revocation event
// produced to the bus is consumed by the dispatcher group and evicts the
// cached decision.
type PipelineSuite struct {
	suite.Suite
	broker string
}

func TestPipelineSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PipelineSuite))
}

func (s *PipelineSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.broker = mgr.GetRedpanda(s.T()).Broker
}

func (s *PipelineSuite) kafkaConfig() config.KafkaConfig {
	return config.KafkaConfig{
		Brokers: []string{s.broker},
		GroupID: "access-invalidation-" + uuid.NewString(),
	}
}

func (s *PipelineSuite) TestRevocationEventEvictsCachedDecision() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	cfg := s.kafkaConfig()

	s.Require().NoError(kafka.EnsureTopics(ctx, cfg, invalidation.Topics()...))

	subject := id.NewUserID()
	territory := id.NewTerritoryID()
	key := models.CapabilityKey(subject, territory, models.CapabilityModerator)
	siblingKey := models.CapabilityKey(subject, territory, models.CapabilityEventHost)

	cache := memorycache.New()
	s.Require().NoError(cache.Set(ctx, subject, key, true, time.Hour))
	s.Require().NoError(cache.Set(ctx, subject, siblingKey, true, time.Hour))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dispatcher, err := invalidation.New(cache, logger)
	s.Require().NoError(err)

	consumer, err := kafka.NewConsumerGroup(cfg, invalidation.Topics(), logger)
	s.Require().NoError(err)

	consumerDone := make(chan error, 1)
	consumerCtx, stopConsumer := context.WithCancel(ctx)
	go func() {
		consumerDone <- consumer.Run(consumerCtx, dispatcher)
	}()
	defer func() {
		stopConsumer()
		<-consumerDone
		consumer.Close()
	}()

	producer, err := kafka.NewProducer(cfg)
	s.Require().NoError(err)
	defer producer.Close()

	payload, err := json.Marshal(models.CapabilityRevoked{
		SubjectID:   subject.String(),
		TerritoryID: territory.String(),
		Capability:  models.CapabilityModerator.String(),
	})
	s.Require().NoError(err)
	s.Require().NoError(producer.Publish(ctx, models.TopicCapabilityRevoked, []byte(subject.String()), payload))

	s.Require().Eventually(func() bool {
		_, found, err := cache.Get(ctx, key)
		return err == nil && !found
	}, 30*time.Second, 100*time.Millisecond, "revoked capability should be evicted")

	// The untouched sibling decision survives the targeted eviction.
	_, found, err := cache.Get(ctx, siblingKey)
	s.Require().NoError(err)
	s.True(found)
}

// flakyCache fails eviction a fixed number of times before delegating,
// standing in for a transiently unreachable cache.
type flakyCache struct {
	*memorycache.Cache
	mu       sync.Mutex
	failures int
}

func (f *flakyCache) Remove(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		return errors.New("cache unreachable")
	}
	f.mu.Unlock()
	return f.Cache.Remove(ctx, keys...)
}

func (s *PipelineSuite) TestFailedEvictionIsRedelivered() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	cfg := s.kafkaConfig()

	s.Require().NoError(kafka.EnsureTopics(ctx, cfg, invalidation.Topics()...))

	subject := id.NewUserID()
	territory := id.NewTerritoryID()
	key := models.CapabilityKey(subject, territory, models.CapabilityModerator)

	cache := &flakyCache{Cache: memorycache.New(), failures: 2}
	s.Require().NoError(cache.Set(ctx, subject, key, true, time.Hour))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dispatcher, err := invalidation.New(cache, logger)
	s.Require().NoError(err)

	consumer, err := kafka.NewConsumerGroup(cfg, invalidation.Topics(), logger)
	s.Require().NoError(err)

	consumerDone := make(chan error, 1)
	consumerCtx, stopConsumer := context.WithCancel(ctx)
	go func() {
		consumerDone <- consumer.Run(consumerCtx, dispatcher)
	}()
	defer func() {
		stopConsumer()
		<-consumerDone
		consumer.Close()
	}()

	producer, err := kafka.NewProducer(cfg)
	s.Require().NoError(err)
	defer producer.Close()

	payload, err := json.Marshal(models.CapabilityRevoked{
		SubjectID:   subject.String(),
		TerritoryID: territory.String(),
		Capability:  models.CapabilityModerator.String(),
	})
	s.Require().NoError(err)
	s.Require().NoError(producer.Publish(ctx, models.TopicCapabilityRevoked, []byte(subject.String()), payload))

	// The first deliveries fail against the unreachable cache; the rewound
	// partition must deliver the same event again until the eviction lands.
	s.Require().Eventually(func() bool {
		_, found, err := cache.Get(ctx, key)
		return err == nil && !found
	}, 30*time.Second, 100*time.Millisecond, "eviction should succeed on redelivery")
}

func (s *PipelineSuite) TestPermissionRevocationEvictsSubjectAcrossTopics() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	cfg := s.kafkaConfig()

	s.Require().NoError(kafka.EnsureTopics(ctx, cfg, invalidation.Topics()...))

	subject := id.NewUserID()
	bystander := id.NewUserID()
	territory := id.NewTerritoryID()

	cache := memorycache.New()
	s.Require().NoError(cache.Set(ctx, subject, models.PermissionKey(subject, models.PermissionSystemAdmin), true, time.Hour))
	s.Require().NoError(cache.Set(ctx, subject, models.CapabilityKey(subject, territory, models.CapabilityCurator), true, time.Hour))
	s.Require().NoError(cache.Set(ctx, bystander, models.PolicyKey(bystander), true, time.Hour))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dispatcher, err := invalidation.New(cache, logger)
	s.Require().NoError(err)

	consumer, err := kafka.NewConsumerGroup(cfg, invalidation.Topics(), logger)
	s.Require().NoError(err)

	consumerDone := make(chan error, 1)
	consumerCtx, stopConsumer := context.WithCancel(ctx)
	go func() {
		consumerDone <- consumer.Run(consumerCtx, dispatcher)
	}()
	defer func() {
		stopConsumer()
		<-consumerDone
		consumer.Close()
	}()

	producer, err := kafka.NewProducer(cfg)
	s.Require().NoError(err)
	defer producer.Close()

	payload, err := json.Marshal(models.SystemPermissionRevoked{
		SubjectID:  subject.String(),
		Permission: models.PermissionSystemAdmin.String(),
	})
	s.Require().NoError(err)
	s.Require().NoError(producer.Publish(ctx, models.TopicPermissionRevoked, []byte(subject.String()), payload))

	s.Require().Eventually(func() bool {
		return cache.Len() == 1
	}, 30*time.Second, 100*time.Millisecond, "every decision for the subject should be evicted")

	_, found, err := cache.Get(ctx, models.PolicyKey(bystander))
	s.Require().NoError(err)
	s.True(found)
}
