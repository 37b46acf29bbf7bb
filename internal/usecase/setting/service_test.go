package setting_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tlwd-backend/internal/domain/entity"
	settingUC "tlwd-backend/internal/usecase/setting"
)

type stubRepo struct {
	data map[string]*entity.Setting
	keys []string
}

func (s *stubRepo) List(context.Context) ([]*entity.Setting, error) {
	out := make([]*entity.Setting, 0, len(s.data))
	for _, v := range s.data {
		out = append(out, v)
	}
	return out, nil
}

func (s *stubRepo) Upsert(_ context.Context, st *entity.Setting) error {
	s.keys = append(s.keys, st.Key)
	s.data[st.Key] = st
	return nil
}

func TestUpdate(t *testing.T) {
	repo := &stubRepo{data: map[string]*entity.Setting{
		"siteName": {Key: "siteName", Value: "TLWD"},
	}}
	svc := &settingUC.Service{Repo: repo}

	got, err := svc.Update(context.Background(), map[string]any{
		"contactEmail": "info@tlwd.org",
		"socials":      map[string]any{"x": "@tlwd"},
	})
	require.NoError(t, err)

	want := map[string]any{
		"siteName":     "TLWD",
		"contactEmail": "info@tlwd.org",
		"socials":      map[string]any{"x": "@tlwd"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"contactEmail", "socials"}, repo.keys, "keys are written in sorted order")
	assert.Equal(t, settingUC.DefaultCategory, repo.data["socials"].Category)
}

func TestUpdate_Empty(t *testing.T) {
	svc := &settingUC.Service{Repo: &stubRepo{data: map[string]*entity.Setting{}}}
	_, err := svc.Update(context.Background(), nil)
	assert.True(t, errors.Is(err, entity.ErrValidationFailed))
}
