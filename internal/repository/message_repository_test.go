package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/welldanyogia/folio-backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MessageRepositoryTestSuite is the test suite for MessageRepository
type MessageRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo MessageRepository
	base time.Time
}

// SetupSuite runs once before all tests
func (s *MessageRepositoryTestSuite) SetupSuite() {
	// Use in-memory SQLite for testing
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(s.T(), err)

	// A single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(s.T(), err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.Message{})
	require.NoError(s.T(), err)

	s.db = db
	s.repo = NewMessageRepository(db)
	s.base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

// TearDownSuite runs once after all tests
func (s *MessageRepositoryTestSuite) TearDownSuite() {
	sqlDB, _ := s.db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}
}

// SetupTest runs before each test - clean up data
func (s *MessageRepositoryTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM messages")
}

// TestMessageRepositoryTestSuite runs the test suite
func TestMessageRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(MessageRepositoryTestSuite))
}

// seed inserts n messages with the given status, one minute apart, starting at offset minutes
func (s *MessageRepositoryTestSuite) seed(n int, status models.Status, offset int) []models.Message {
	created := make([]models.Message, 0, n)
	for i := 0; i < n; i++ {
		message := models.Message{
			Name:      fmt.Sprintf("Sender %d", offset+i),
			Email:     fmt.Sprintf("sender%d@example.com", offset+i),
			Body:      "Hello there",
			Status:    status,
			CreatedAt: s.base.Add(time.Duration(offset+i) * time.Minute),
		}
		require.NoError(s.T(), s.repo.Create(context.Background(), &message))
		created = append(created, message)
	}
	return created
}

// ==================== Create Tests ====================

func (s *MessageRepositoryTestSuite) TestCreate_AssignsIdentityAndUnreadStatus() {
	// Arrange
	message := &models.Message{
		Name:  "Ada",
		Email: "ada@example.com",
		Body:  "Loved the portfolio",
	}

	// Act
	err := s.repo.Create(context.Background(), message)

	// Assert
	assert.NoError(s.T(), err)
	assert.NotEmpty(s.T(), message.ID)
	assert.Equal(s.T(), models.StatusUnread, message.Status)
	assert.False(s.T(), message.CreatedAt.IsZero())
}

func (s *MessageRepositoryTestSuite) TestCreate_DuplicateID() {
	// Arrange
	first := &models.Message{ID: "fixed-id", Name: "A", Email: "a@example.com", Body: "one"}
	require.NoError(s.T(), s.repo.Create(context.Background(), first))

	// Act
	err := s.repo.Create(context.Background(), &models.Message{ID: "fixed-id", Name: "B", Email: "b@example.com", Body: "two"})

	// Assert
	assert.ErrorIs(s.T(), err, ErrDuplicateEntry)
}

// ==================== GetByID Tests ====================

func (s *MessageRepositoryTestSuite) TestGetByID_Found() {
	// Arrange
	created := s.seed(1, models.StatusRead, 0)[0]

	// Act
	result, err := s.repo.GetByID(context.Background(), created.ID)

	// Assert
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), created.ID, result.ID)
	assert.Equal(s.T(), models.StatusRead, result.Status)
	assert.Equal(s.T(), "Hello there", result.Body)
}

func (s *MessageRepositoryTestSuite) TestGetByID_NotFound() {
	// Act
	result, err := s.repo.GetByID(context.Background(), "missing")

	// Assert
	assert.ErrorIs(s.T(), err, ErrNotFound)
	assert.Nil(s.T(), result)
}

// ==================== List Tests ====================

func (s *MessageRepositoryTestSuite) TestList_OrderedByCreatedAtDesc() {
	// Arrange
	s.seed(3, models.StatusUnread, 0)

	// Act
	result, total, err := s.repo.List(context.Background(), models.FilterAll, 10, 0)

	// Assert
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), int64(3), total)
	require.Len(s.T(), result, 3)
	assert.Equal(s.T(), "Sender 2", result[0].Name)
	assert.Equal(s.T(), "Sender 1", result[1].Name)
	assert.Equal(s.T(), "Sender 0", result[2].Name)
}

func (s *MessageRepositoryTestSuite) TestList_EqualTimestampsAreDeterministic() {
	// Arrange
	for _, id := range []string{"b", "c", "a"} {
		message := &models.Message{ID: id, Name: id, Email: id + "@example.com", Body: "x", CreatedAt: s.base}
		require.NoError(s.T(), s.repo.Create(context.Background(), message))
	}

	// Act
	first, _, err := s.repo.List(context.Background(), models.FilterAll, 2, 0)
	require.NoError(s.T(), err)
	second, _, err := s.repo.List(context.Background(), models.FilterAll, 2, 2)
	require.NoError(s.T(), err)

	// Assert
	require.Len(s.T(), first, 2)
	require.Len(s.T(), second, 1)
	assert.Equal(s.T(), "c", first[0].ID)
	assert.Equal(s.T(), "b", first[1].ID)
	assert.Equal(s.T(), "a", second[0].ID)
}

func (s *MessageRepositoryTestSuite) TestList_WithPagination() {
	// Arrange
	s.seed(25, models.StatusRead, 0)

	// Act
	page3, total, err := s.repo.List(context.Background(), models.FilterAll, 10, 20)

	// Assert
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), int64(25), total)
	assert.Len(s.T(), page3, 5)
}

func (s *MessageRepositoryTestSuite) TestList_OffsetPastEnd() {
	// Arrange
	s.seed(3, models.StatusRead, 0)

	// Act
	result, total, err := s.repo.List(context.Background(), models.FilterAll, 10, 30)

	// Assert
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), int64(3), total)
	assert.NotNil(s.T(), result)
	assert.Empty(s.T(), result)
}

func (s *MessageRepositoryTestSuite) TestList_FiltersByStatus() {
	// Arrange
	s.seed(4, models.StatusUnread, 0)
	s.seed(6, models.StatusRead, 10)
	s.seed(2, models.StatusReplied, 20)

	// Act
	unread, unreadTotal, err := s.repo.List(context.Background(), models.StatusFilter(models.StatusUnread), 10, 0)
	require.NoError(s.T(), err)
	replied, repliedTotal, err := s.repo.List(context.Background(), models.StatusFilter(models.StatusReplied), 10, 0)
	require.NoError(s.T(), err)

	// Assert
	assert.Equal(s.T(), int64(4), unreadTotal)
	assert.Len(s.T(), unread, 4)
	for _, m := range unread {
		assert.Equal(s.T(), models.StatusUnread, m.Status)
	}
	assert.Equal(s.T(), int64(2), repliedTotal)
	assert.Len(s.T(), replied, 2)
}

func (s *MessageRepositoryTestSuite) TestList_EmptyInbox() {
	// Act
	result, total, err := s.repo.List(context.Background(), models.FilterAll, 10, 0)

	// Assert
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), int64(0), total)
	assert.NotNil(s.T(), result)
	assert.Empty(s.T(), result)
}

// ==================== CountUnread Tests ====================

func (s *MessageRepositoryTestSuite) TestCountUnread_CountsWholeInbox() {
	// Arrange
	s.seed(10, models.StatusUnread, 0)
	s.seed(15, models.StatusRead, 10)

	// Act
	count, err := s.repo.CountUnread(context.Background())

	// Assert
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), int64(10), count)
}

// ==================== Update Tests ====================

func (s *MessageRepositoryTestSuite) TestUpdate_StatusOnly() {
	// Arrange
	created := s.seed(1, models.StatusUnread, 0)[0]
	notes := "follow up next week"
	_, err := s.repo.Update(context.Background(), created.ID, models.MessageUpdate{AdminNotes: &notes})
	require.NoError(s.T(), err)
	replied := models.StatusReplied

	// Act
	updated, err := s.repo.Update(context.Background(), created.ID, models.MessageUpdate{Status: &replied})

	// Assert
	assert.NoError(s.T(), err)
	assert.Equal(s.T(), models.StatusReplied, updated.Status)

	stored, err := s.repo.GetByID(context.Background(), created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StatusReplied, stored.Status)
	require.NotNil(s.T(), stored.AdminNotes)
	assert.Equal(s.T(), "follow up next week", *stored.AdminNotes)
}

func (s *MessageRepositoryTestSuite) TestUpdate_IsIdempotent() {
	// Arrange
	created := s.seed(1, models.StatusUnread, 0)[0]
	read := models.StatusRead

	// Act
	_, err1 := s.repo.Update(context.Background(), created.ID, models.MessageUpdate{Status: &read})
	_, err2 := s.repo.Update(context.Background(), created.ID, models.MessageUpdate{Status: &read})

	// Assert
	assert.NoError(s.T(), err1)
	assert.NoError(s.T(), err2)
	stored, err := s.repo.GetByID(context.Background(), created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StatusRead, stored.Status)
}

func (s *MessageRepositoryTestSuite) TestUpdate_InvalidStatusLeavesRecordUnchanged() {
	// Arrange
	created := s.seed(1, models.StatusUnread, 0)[0]
	archived := models.Status("archived")

	// Act
	_, err := s.repo.Update(context.Background(), created.ID, models.MessageUpdate{Status: &archived})

	// Assert
	assert.ErrorIs(s.T(), err, ErrInvalidInput)
	stored, err := s.repo.GetByID(context.Background(), created.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.StatusUnread, stored.Status)
}

func (s *MessageRepositoryTestSuite) TestUpdate_NotFound() {
	// Arrange
	read := models.StatusRead

	// Act
	_, err := s.repo.Update(context.Background(), "missing", models.MessageUpdate{Status: &read})

	// Assert
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

// ==================== Delete Tests ====================

func (s *MessageRepositoryTestSuite) TestDelete_Success() {
	// Arrange
	created := s.seed(3, models.StatusUnread, 0)
	_, before, err := s.repo.List(context.Background(), models.FilterAll, 10, 0)
	require.NoError(s.T(), err)

	// Act
	err = s.repo.Delete(context.Background(), created[1].ID)

	// Assert
	assert.NoError(s.T(), err)
	result, after, err := s.repo.List(context.Background(), models.FilterAll, 10, 0)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), before-1, after)
	for _, m := range result {
		assert.NotEqual(s.T(), created[1].ID, m.ID)
	}
}

func (s *MessageRepositoryTestSuite) TestDelete_NotFound() {
	// Act
	err := s.repo.Delete(context.Background(), "missing")

	// Assert
	assert.ErrorIs(s.T(), err, ErrNotFound)
}
