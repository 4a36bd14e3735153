package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisteredMigrationsAreOrdered(t *testing.T) {
	ms := GetMigrations()
	require.NotEmpty(t, ms)

	for i := 1; i < len(ms); i++ {
		assert.Greater(t, ms[i].Version, ms[i-1].Version, "migrations must be strictly ordered")
	}

	for _, m := range ms {
		assert.NotEmpty(t, m.Name)
		assert.NotEmpty(t, m.UpScript)
		assert.NotEmpty(t, m.DownScript)
	}
}

func TestGetMigrationByVersion(t *testing.T) {
	m := GetMigrationByVersion(1)
	require.NotNil(t, m)
	assert.Equal(t, "initial_schema", m.Name)
	assert.Equal(t, "000001_initial_schema", m.String())

	assert.Nil(t, GetMigrationByVersion(999999))
}

func TestPersistentModelsRegistry(t *testing.T) {
	ms := PersistentModels()
	assert.Len(t, ms, 8)
	for _, m := range ms {
		assert.NotNil(t, m)
	}
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := []Migration{{Version: 1}, {Version: 2}}

	assert.NoError(t, validateAppliedVersions(nil, registered))
	assert.NoError(t, validateAppliedVersions([]int{1}, registered))
	assert.Error(t, validateAppliedVersions([]int{1, 7}, registered))
}
