package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"ai-scribe-be/internal/entity"
	"ai-scribe-be/internal/model"
	"ai-scribe-be/internal/repository/implementation"
	"ai-scribe-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRepositoryGorm(t *testing.T) {
	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}
	require.NoError(t, gormDB.AutoMigrate(&model.HistoryEntry{}))

	repo := implementation.NewHistoryRepository(gormDB)
	ctx := context.Background()
	userId := uuid.New()

	t.Cleanup(func() {
		repo.DeleteAllByUserId(ctx, userId)
	})

	first := &entity.HistoryEntry{
		Id:     uuid.New(),
		UserId: userId,
		Context: entity.ConsultationContext{
			Age:      "52",
			Sex:      "M",
			Modality: "telemedicina",
		},
		Profile:   entity.ProfileSnapshot{FullName: "Dr. Prueba", Specialty: "Cardiología"},
		NoteText:  "## Motivo de consulta\nDolor torácico.",
		Alerts:    []entity.ClinicalAlert{{Type: "interaction", Severity: entity.SeverityHigh, Title: "Interacción", Details: "-", Recommendation: "-"}},
		CreatedAt: time.Now().Add(-time.Minute),
	}
	second := &entity.HistoryEntry{
		Id:        uuid.New(),
		UserId:    userId,
		Context:   entity.ConsultationContext{Age: "52", Sex: "M", Modality: "presencial"},
		Profile:   entity.ProfileSnapshot{FullName: "Dr. Prueba"},
		NoteText:  "## Evolución\nSin cambios.",
		CreatedAt: time.Now(),
	}

	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	t.Run("ListNewestFirst", func(t *testing.T) {
		entries, err := repo.FindAllByUserId(ctx, userId)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, second.Id, entries[0].Id)
		assert.Equal(t, first.Id, entries[1].Id)

		// JSON round trip through datatypes.JSON columns.
		require.Len(t, entries[1].Alerts, 1)
		assert.Equal(t, entity.SeverityHigh, entries[1].Alerts[0].Severity)
		assert.Equal(t, "telemedicina", entries[1].Context.Modality)
	})

	t.Run("DeleteOne", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, userId, first.Id))
		count, err := repo.CountByUserId(ctx, userId)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})

	t.Run("DeleteScopedToOwner", func(t *testing.T) {
		otherUser := uuid.New()
		require.NoError(t, repo.Delete(ctx, otherUser, second.Id))
		count, err := repo.CountByUserId(ctx, userId)
		require.NoError(t, err)
		assert.EqualValues(t, 1, count, "another user's delete must not touch the entry")
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, repo.DeleteAllByUserId(ctx, userId))
		count, err := repo.CountByUserId(ctx, userId)
		require.NoError(t, err)
		assert.EqualValues(t, 0, count)
	})
}
