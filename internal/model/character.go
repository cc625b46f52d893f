package model

import "time"

// CharacterStatus is the life status of a character.
type CharacterStatus string

const (
	StatusAlive       CharacterStatus = "Vivo"
	StatusDeceased    CharacterStatus = "Falecido"
	StatusDeceasedFem CharacterStatus = "Falecida"
	StatusUnknown     CharacterStatus = "Desconhecido"
)

// CharacterStatuses lists every accepted status in declaration order.
var CharacterStatuses = []CharacterStatus{StatusAlive, StatusDeceased, StatusDeceasedFem, StatusUnknown}

// Valid reports whether s is one of the known statuses.
func (s CharacterStatus) Valid() bool {
	for _, known := range CharacterStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Character represents a catalog entry.
type Character struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Status    CharacterStatus `json:"status"`
	Location  string          `json:"location"`
	LastSeen  string          `json:"lastSeen"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// CharacterInput carries the fields required to create a character.
type CharacterInput struct {
	Name     string          `json:"name" validate:"required"`
	Status   CharacterStatus `json:"status" validate:"required,character_status"`
	Location string          `json:"location" validate:"required"`
	LastSeen string          `json:"lastSeen" validate:"required"`
}

// CharacterPatch carries the fields to merge into an existing character.
// Nil fields are left untouched.
type CharacterPatch struct {
	Name     *string          `json:"name,omitempty" validate:"omitempty,min=1"`
	Status   *CharacterStatus `json:"status,omitempty" validate:"omitempty,character_status"`
	Location *string          `json:"location,omitempty" validate:"omitempty,min=1"`
	LastSeen *string          `json:"lastSeen,omitempty" validate:"omitempty,min=1"`
}

// Empty reports whether the patch changes nothing.
func (p CharacterPatch) Empty() bool {
	return p.Name == nil && p.Status == nil && p.Location == nil && p.LastSeen == nil
}

// CharacterFilter narrows a character listing. Zero values match everything.
type CharacterFilter struct {
	Name     string          `query:"name"`
	Status   CharacterStatus `query:"status" validate:"omitempty,character_status"`
	Location string          `query:"location"`
}

// DefaultCharacters returns the catalog the character store starts with.
func DefaultCharacters() []Character {
	return []Character{
		{ID: 1, Name: "Darth Vader", Status: StatusDeceased, Location: "Estrela da Morte II", LastSeen: "Star Wars: Episódio IV"},
		{ID: 2, Name: "Yoda", Status: StatusDeceased, Location: "Dagobah", LastSeen: "Star Wars: Episódio V"},
		{ID: 3, Name: "Luke Skywalker", Status: StatusDeceased, Location: "Ahch-To", LastSeen: "Star Wars: Episódio IV"},
		{ID: 4, Name: "Princesa Leia", Status: StatusDeceasedFem, Location: "Alderaan", LastSeen: "Star Wars: Episódio IV"},
		{ID: 5, Name: "Han Solo", Status: StatusDeceased, Location: "Millennium Falcon", LastSeen: "Star Wars: Episódio IV"},
		{ID: 6, Name: "Obi-Wan Kenobi", Status: StatusDeceased, Location: "Tatooine", LastSeen: "Star Wars: Episódio IV"},
		{ID: 7, Name: "Palpatine", Status: StatusDeceased, Location: "Exegol", LastSeen: "Star Wars: Episódio III"},
		{ID: 8, Name: "Chewbacca", Status: StatusAlive, Location: "Millennium Falcon", LastSeen: "Star Wars: Episódio IV"},
		{ID: 9, Name: "R2-D2", Status: StatusAlive, Location: "Resistência", LastSeen: "Star Wars: Episódio IV"},
		{ID: 10, Name: "C-3PO", Status: StatusAlive, Location: "Resistência", LastSeen: "Star Wars: Episódio IV"},
		{ID: 11, Name: "Rey", Status: StatusAlive, Location: "Tatooine", LastSeen: "Star Wars: Episódio VII"},
		{ID: 12, Name: "Kylo Ren", Status: StatusDeceased, Location: "Exegol", LastSeen: "Star Wars: Episódio VII"},
		{ID: 13, Name: "Darth Maul", Status: StatusDeceased, Location: "Mandalore", LastSeen: "Star Wars: Episódio I"},
		{ID: 14, Name: "Mace Windu", Status: StatusDeceased, Location: "Coruscant", LastSeen: "Star Wars: Episódio I"},
		{ID: 15, Name: "Padmé Amidala", Status: StatusDeceasedFem, Location: "Naboo", LastSeen: "Star Wars: Episódio I"},
	}
}
