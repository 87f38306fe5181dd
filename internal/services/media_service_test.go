package services

import (
	"context"
	"testing"

	"culturology/internal/models"
	"culturology/internal/observability"
	contextutils "culturology/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaService_CRUD(t *testing.T) {
	svc := NewMediaService(newTestDB(t), observability.NewNopLogger())
	ctx := context.Background()

	duration := 95
	video, err := svc.CreateMedia(ctx, models.MediaItemInput{
		Type:      models.MediaTypeVideo,
		URL:       "https://media.test/haka.mp4",
		Thumbnail: models.StringPtr("https://media.test/haka.jpg"),
		Caption:   models.StringPtr("Haka performance"),
		Duration:  &duration,
	})
	require.NoError(t, err)
	assert.NotZero(t, video.ID)

	_, err = svc.CreateMedia(ctx, models.MediaItemInput{Type: models.MediaTypeAudio, URL: "https://media.test/joik.mp3"})
	require.NoError(t, err)

	items, err := svc.ListMedia(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, *video, items[0])
	assert.Nil(t, items[1].Duration)

	page, err := svc.ListMedia(ctx, 1, 5)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, models.MediaTypeAudio, page[0].Type)

	got, err := svc.GetMedia(ctx, video.ID)
	require.NoError(t, err)
	assert.Equal(t, 95, *got.Duration)

	require.NoError(t, svc.DeleteMedia(ctx, video.ID))
	_, err = svc.GetMedia(ctx, video.ID)
	assert.True(t, contextutils.IsError(err, contextutils.ErrRecordNotFound))
	assert.True(t, contextutils.IsError(svc.DeleteMedia(ctx, video.ID), contextutils.ErrRecordNotFound))
}

func TestMediaService_Validation(t *testing.T) {
	svc := NewMediaService(newTestDB(t), observability.NewNopLogger())

	_, err := svc.CreateMedia(context.Background(), models.MediaItemInput{Type: "image", URL: "not a url"})
	require.Error(t, err)
	assert.True(t, contextutils.IsError(err, contextutils.ErrValidationFailed))
	assert.Contains(t, err.Error(), "type")
	assert.Contains(t, err.Error(), "url")
}
