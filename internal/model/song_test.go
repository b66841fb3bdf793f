package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ClampPositionBounds(t *testing.T) {
	s := Song{Duration: 120}

	s.Current.Position = -5
	s.ClampPosition()
	assert.Equal(t, 0.0, s.Current.Position)

	s.Current.Position = 500
	s.ClampPosition()
	assert.Equal(t, 120.0, s.Current.Position)

	s.Current.Position = 60
	s.ClampPosition()
	assert.Equal(t, 60.0, s.Current.Position)
}

func Test_MediaStateString(t *testing.T) {
	assert.Equal(t, "Play", MediaPlay.String())
	assert.Equal(t, "Finished", MediaFinished.String())
	assert.Equal(t, "Empty", MediaEmpty.String())
}
