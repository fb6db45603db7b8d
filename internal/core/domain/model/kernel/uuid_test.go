package kernel_test

import (
	"testing"

	"giftflow/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUUID(t *testing.T) {
	id1 := kernel.NewUUID()
	id2 := kernel.NewUUID()

	assert.NoError(t, id1.Validate())
	assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`, id1.String())
	assert.False(t, id1.IsEqual(id2))
}

func TestUUIDFromString(t *testing.T) {
	canonical := "7f1c9a4e-2b5d-4e8f-9a3c-6d0e1f2a3b4c"

	t.Run("accepts standard representations", func(t *testing.T) {
		for _, input := range []string{
			canonical,
			"{7f1c9a4e-2b5d-4e8f-9a3c-6d0e1f2a3b4c}",
			"urn:uuid:7f1c9a4e-2b5d-4e8f-9a3c-6d0e1f2a3b4c",
			"7f1c9a4e2b5d4e8f9a3c6d0e1f2a3b4c",
		} {
			id, err := kernel.UUIDFromString(input)
			require.NoError(t, err, input)
			assert.Equal(t, canonical, id.String())
		}
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, input := range []string{
			"",
			"not-a-uuid",
			"7f1c9a4e-2b5d-4e8f-9a3c",
			"7f1c9a4e-2b5d-4e8f-9a3c-6d0e1f2a3b4c-extra",
			"zz1c9a4e-2b5d-4e8f-9a3c-6d0e1f2a3b4c",
		} {
			_, err := kernel.UUIDFromString(input)
			require.Error(t, err, input)
			assert.Contains(t, err.Error(), "invalid UUID format")
		}
	})
}

func TestUUIDFromBytes(t *testing.T) {
	t.Run("round-trips through the driver representation", func(t *testing.T) {
		source := kernel.NewUUID()
		raw := source.Bytes()

		restored, err := kernel.UUIDFromBytes(raw[:])

		require.NoError(t, err)
		assert.True(t, source.IsEqual(restored))
	})

	t.Run("rejects short slices", func(t *testing.T) {
		_, err := kernel.UUIDFromBytes([]byte{0x7f, 0x1c, 0x9a})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid UUID format")
	})

	t.Run("rejects the nil UUID", func(t *testing.T) {
		_, err := kernel.UUIDFromBytes(make([]byte, 16))

		assert.Equal(t, kernel.ErrUUIDIsNotConstructed, err)
	})
}

func TestUUID_Bytes(t *testing.T) {
	id := kernel.NewUUID()
	raw := id.Bytes()

	assert.IsType(t, uuid.UUID{}, raw)
	assert.Equal(t, id.String(), raw.String())

	// raw is a copy; mutating it leaves the value object intact.
	for i := range raw {
		raw[i] = 0xFF
	}
	assert.NotEqual(t, raw.String(), id.String())
}

func TestUUID_IsEqual(t *testing.T) {
	a, err := kernel.UUIDFromString("7f1c9a4e-2b5d-4e8f-9a3c-6d0e1f2a3b4c")
	require.NoError(t, err)
	b, err := kernel.UUIDFromString("7f1c9a4e-2b5d-4e8f-9a3c-6d0e1f2a3b4c")
	require.NoError(t, err)

	assert.True(t, a.IsEqual(b))
	assert.False(t, a.IsEqual(kernel.NewUUID()))

	var zero1, zero2 kernel.UUID
	assert.True(t, zero1.IsEqual(zero2))
	assert.False(t, zero1.IsEqual(a))
}

func TestUUID_Validate(t *testing.T) {
	assert.NoError(t, kernel.NewUUID().Validate())

	var zero kernel.UUID
	assert.Equal(t, kernel.ErrUUIDIsNotConstructed, zero.Validate())

	parsedNil, err := kernel.UUIDFromString("00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	assert.Equal(t, kernel.ErrUUIDIsNotConstructed, parsedNil.Validate())
}
