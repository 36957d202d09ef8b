package services

import (
	"testing"

	"github.com/campusnet/backend/internal/metrics"
	"github.com/rs/zerolog"
)

type testEnv struct {
	users         *fakeUsers
	follows       *fakeFollows
	notifications *fakeNotifications
	posts         *fakePosts
	saved         *fakeSaved
	stories       *fakeStories
	messages      *fakeMessages
	announcements *fakeAnnouncements
	reports       *fakeReports

	metrics       *metrics.Metrics
	notifier      *NotificationService
	relationships *RelationshipService
	content       *ContentService
	messaging     *MessagingService
	broadcasts    *AnnouncementService
	moderation    *ModerationService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithBatch(t, DefaultBatchSize)
}

func newTestEnvWithBatch(t *testing.T, batchSize int) *testEnv {
	t.Helper()
	log := zerolog.Nop()
	e := &testEnv{
		users:         newFakeUsers(),
		notifications: &fakeNotifications{},
		posts:         newFakePosts(),
		saved:         &fakeSaved{},
		stories:       newFakeStories(),
		messages:      &fakeMessages{},
		announcements: newFakeAnnouncements(),
		reports:       newFakeReports(),
		metrics:       metrics.NewNoop(),
	}
	e.follows = newFakeFollows(e.users)
	e.notifier = NewNotificationService(e.notifications, e.metrics, log, batchSize)
	e.relationships = NewRelationshipService(e.users, e.follows, e.notifier, e.metrics, log)
	e.content = NewContentService(e.users, e.follows, e.posts, e.saved, e.stories, e.notifier, log)
	e.messaging = NewMessagingService(e.users, e.follows, e.messages, e.notifier, log)
	e.broadcasts = NewAnnouncementService(e.users, e.announcements, e.notifier, log)
	e.moderation = NewModerationService(e.users, e.posts, e.saved, e.reports, log)
	return e
}
