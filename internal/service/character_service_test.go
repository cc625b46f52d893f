package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "starwars/internal/errors"
	"starwars/internal/model"
	"starwars/internal/repository"
)

func newCharacterService() CharacterService {
	return NewCharacterService(repository.NewCharacterRepository(model.DefaultCharacters()))
}

func TestCharacterService_ListFilters(t *testing.T) {
	ctx := context.Background()
	svc := newCharacterService()

	tests := []struct {
		name   string
		filter model.CharacterFilter
		want   []string
	}{
		{"name substring, any case", model.CharacterFilter{Name: "DARTH"}, []string{"Darth Vader", "Darth Maul"}},
		{"status exact", model.CharacterFilter{Status: model.StatusDeceasedFem}, []string{"Princesa Leia", "Padmé Amidala"}},
		{"location substring", model.CharacterFilter{Location: "falcon"}, []string{"Han Solo", "Chewbacca"}},
		{"combined", model.CharacterFilter{Location: "exegol", Name: "kylo"}, []string{"Kylo Ren"}},
		{"no match", model.CharacterFilter{Name: "Jar Jar"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.List(ctx, tt.filter)
			require.NoError(t, err)
			names := make([]string, 0, len(got))
			for _, c := range got {
				names = append(names, c.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	all, err := svc.List(ctx, model.CharacterFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 15)
}

func TestCharacterService_GetMany(t *testing.T) {
	got, err := newCharacterService().GetMany(context.Background(), []int{8, 999, 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Chewbacca", got[0].Name)
	assert.Equal(t, "Yoda", got[1].Name)
}

func TestCharacterService_CreateThenUpdate(t *testing.T) {
	ctx := context.Background()
	svc := newCharacterService()

	created, err := svc.Create(ctx, model.CharacterInput{
		Name: "Din Djarin", Status: model.StatusAlive, Location: "Nevarro", LastSeen: "The Mandalorian",
	})
	require.NoError(t, err)
	assert.Equal(t, 16, created.ID)

	dead := model.StatusDeceased
	updated, err := svc.Update(ctx, created.ID, model.CharacterPatch{Status: &dead})
	require.NoError(t, err)
	assert.Equal(t, model.StatusDeceased, updated.Status)
	assert.Equal(t, "Din Djarin", updated.Name)
	assert.Equal(t, "Nevarro", updated.Location)
	assert.Equal(t, "The Mandalorian", updated.LastSeen)
}

func TestCharacterService_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newCharacterService()

	_, err := svc.Create(ctx, model.CharacterInput{Name: "Grogu"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.Create(ctx, model.CharacterInput{Name: "Grogu", Status: "Bebê", Location: "Tython", LastSeen: "Mando"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	bogus := model.CharacterStatus("Zumbi")
	_, err = svc.Update(ctx, 1, model.CharacterPatch{Status: &bogus})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	name := "Ghost"
	_, err = svc.Update(ctx, 999, model.CharacterPatch{Name: &name})
	assert.ErrorIs(t, err, apperrors.ErrCharacterNotFound)

	_, err = svc.Get(ctx, 999)
	assert.ErrorIs(t, err, apperrors.ErrCharacterNotFound)
}
