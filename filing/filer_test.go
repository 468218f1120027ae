package filing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTempDirFiler(t *testing.T) {
	f, err := New("db", WithTemp(true))
	require.NoError(t, err)
	require.True(t, f.Opened())
	require.DirExists(t, f.Path())

	require.NoError(t, f.Close(true))
	_, err = os.Stat(f.Path())
	require.True(t, os.IsNotExist(err))
}

func TestNewTempFiledFiler(t *testing.T) {
	f, err := New("config", WithTemp(true), WithFiled(true), WithFext("json"))
	require.NoError(t, err)
	require.True(t, f.Opened())
	require.NotNil(t, f.File())
	require.Equal(t, ".json", filepath.Ext(f.Path()))

	_, werr := f.File().WriteString(`{"hello":"world"}`)
	require.NoError(t, werr)
	require.NoError(t, f.Close(true))
}

func TestReopenReusesExistingPath(t *testing.T) {
	f, err := New("db", WithTemp(true))
	require.NoError(t, err)
	first := f.Path()

	_, err = f.Reopen(false, true, false)
	require.NoError(t, err)
	require.Equal(t, first, f.Path())

	require.NoError(t, f.Close(true))
}

func TestPrimaryHeadFallsBackToAltOnPermissionFailure(t *testing.T) {
	// /proc is read-only for directory creation on Linux, forcing the
	// primary head to fail and the alt (home-directory) fallback to
	// take over, per spec.md §4.9.
	f, err := New("db", WithBase("serdkeri-test"), WithHeadDirPath("/proc/keri-head-unwritable"))
	require.NoError(t, err)
	require.NotEmpty(t, f.Path())
	require.NoError(t, f.Close(true))
}
