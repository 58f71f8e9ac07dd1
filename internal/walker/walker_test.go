package walker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/namecheck/internal/rules"
)

// buildTree creates files (and their parent directories) below a temp dir.
// Entries ending in "/" are created as empty directories.
func buildTree(t *testing.T, entries ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, e := range entries {
		path := filepath.Join(root, filepath.FromSlash(e))
		if strings.HasSuffix(e, "/") {
			require.NoError(t, os.MkdirAll(path, 0755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	}
	return root
}

func requireCaseSensitive(t *testing.T, dir string) {
	t.Helper()
	marker := filepath.Join(dir, "CaseMarker")
	require.NoError(t, os.WriteFile(marker, nil, 0644))
	defer os.Remove(marker)
	if _, err := os.Stat(filepath.Join(dir, "casemarker")); err == nil {
		t.Skip("file system is case-insensitive")
	}
}

func newWalker(includeHidden bool) *Walker {
	return New(rules.NewEngine(rules.DefaultRuleSet()), Options{IncludeHidden: includeHidden}, nil)
}

func relVisited(t *testing.T, root string, res *Result) []string {
	t.Helper()
	var out []string
	for _, p := range res.Visited() {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestWalk_HiddenPruned(t *testing.T) {
	root := t.TempDir()
	requireCaseSensitive(t, root)
	for _, f := range []string{"A.txt", "a.txt", "sub/.hidden", "sub/.hiddendir/deep.txt"} {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, nil, 0644))
	}

	res, err := newWalker(false).Walk(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{".", "A.txt", "a.txt", "sub"}, relVisited(t, root, res))
	assert.Len(t, res.Pruned, 2)

	require.NotEmpty(t, res.Findings)
	collision := res.Findings[0]
	assert.Equal(t, root, collision.Path)
	require.Len(t, collision.Warnings, 1)
	assert.Equal(t, rules.RuleCaseCollision, collision.Warnings[0].Rule)
	assert.Contains(t, collision.Warnings[0].Message, `"A.txt" and "a.txt"`)
}

func TestWalk_HiddenIncluded(t *testing.T) {
	root := buildTree(t, "A.txt", "sub/.hidden", "sub/.hiddendir/deep.txt")

	res, err := newWalker(true).Walk(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{".", "A.txt", "sub", "sub/.hidden", "sub/.hiddendir", "sub/.hiddendir/deep.txt"}, relVisited(t, root, res))
	assert.Empty(t, res.Pruned)
}

func TestWalk_RootNotFound(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	res, err := newWalker(false).Walk(context.Background(), missing)
	require.Error(t, err)
	assert.Nil(t, res)

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, missing, nf.Path)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestWalk_BrokenSymlinkSkipped(t *testing.T) {
	root := buildTree(t, "ok.txt")
	if err := os.Symlink(filepath.Join(root, "nowhere"), filepath.Join(root, "dangling?")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	res, err := newWalker(false).Walk(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{".", "ok.txt"}, relVisited(t, root, res))
	assert.Empty(t, res.Findings)
}

func TestWalk_SymlinkToDirectoryNotFollowed(t *testing.T) {
	root := buildTree(t, "real/inner.txt")
	if err := os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	res, err := newWalker(false).Walk(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{".", "link", "real", "real/inner.txt"}, relVisited(t, root, res))
	assert.True(t, res.Entries[1].IsSymlink)
	assert.False(t, res.Entries[1].IsDir)
}

func TestWalk_SymlinkedRootFollowed(t *testing.T) {
	base := buildTree(t, "real/bad<name>")
	link := filepath.Join(base, "link")
	if err := os.Symlink(filepath.Join(base, "real"), link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	direct, err := newWalker(false).Walk(context.Background(), filepath.Join(base, "real"))
	require.NoError(t, err)

	res, err := newWalker(false).Walk(context.Background(), link)
	require.NoError(t, err)
	assert.Equal(t, []string{".", "bad<name>"}, relVisited(t, link, res))
	assert.True(t, res.Entries[0].IsSymlink)
	assert.True(t, res.Entries[0].IsDir)
	assert.Equal(t, direct.WarningCount(), res.WarningCount())
	assert.Equal(t, 2, res.WarningCount())
}

func TestWalk_ComponentWarnings(t *testing.T) {
	root := buildTree(t, "ok/bad<name>.txt", "ok/trailing.", "CON.log")

	res, err := newWalker(false).Walk(context.Background(), root)
	require.NoError(t, err)

	byPath := make(map[string][]rules.Warning)
	for _, f := range res.Findings {
		byPath[f.Path] = f.Warnings
	}

	bad := byPath[filepath.Join(root, "ok", "bad<name>.txt")]
	require.Len(t, bad, 2)
	assert.Equal(t, rules.RuleCharacter, bad[0].Rule)

	trailing := byPath[filepath.Join(root, "ok", "trailing.")]
	require.Len(t, trailing, 1)
	assert.Equal(t, rules.RuleTrailingPeriod, trailing[0].Rule)

	con := byPath[filepath.Join(root, "CON.log")]
	require.Len(t, con, 1)
	assert.Equal(t, rules.RuleReservedName, con[0].Rule)

	assert.Equal(t, 4, res.WarningCount())
}

func TestWalk_RootReservedOnlyAtDepthOne(t *testing.T) {
	root := buildTree(t, "$Boot", "nested/$Boot")

	engine := rules.NewEngine(rules.RuleSet{
		RootReservedNames: rules.DefaultRootReservedNames,
		Disabled:          []rules.RuleID{rules.RuleCharacter},
	})
	res, err := New(engine, Options{}, nil).Walk(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, res.Findings, 1)
	assert.Equal(t, filepath.Join(root, "$Boot"), res.Findings[0].Path)
	assert.Equal(t, rules.RuleRootReservedName, res.Findings[0].Warnings[0].Rule)
}

func TestWalk_LongPath(t *testing.T) {
	long := strings.Repeat("d", 200)
	root := buildTree(t, long+"/"+strings.Repeat("f", 100))

	res, err := newWalker(false).Walk(context.Background(), root)
	require.NoError(t, err)

	var pathWarnings int
	for _, f := range res.Findings {
		for _, w := range f.Warnings {
			if w.Rule == rules.RulePathLength {
				pathWarnings++
			}
		}
	}
	assert.GreaterOrEqual(t, pathWarnings, 1)
}

func TestWalk_Idempotent(t *testing.T) {
	root := buildTree(t, "x:y", "dir/CON", "dir/sub/file ", "empty/")

	w := newWalker(false)
	first, err := w.Walk(context.Background(), root)
	require.NoError(t, err)
	second, err := w.Walk(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, first.Findings, second.Findings)
	assert.Equal(t, first.Entries, second.Entries)
}

type recordingChecker struct {
	components []string
	paths      []string
	listings   [][]string
}

func (r *recordingChecker) CheckPath(path string) []rules.Warning {
	r.paths = append(r.paths, path)
	return nil
}

func (r *recordingChecker) CheckComponent(name string, atRoot bool) []rules.Warning {
	r.components = append(r.components, name)
	return nil
}

func (r *recordingChecker) CheckSiblings(names []string) []rules.Warning {
	r.listings = append(r.listings, names)
	return nil
}

func TestWalk_ComponentChecksGetSingleSegments(t *testing.T) {
	root := buildTree(t, "a/b/c/d.txt", "a/e.txt", "f/")
	checker := &recordingChecker{}

	_, err := New(checker, Options{}, nil).Walk(context.Background(), root)
	require.NoError(t, err)

	require.NotEmpty(t, checker.components)
	for _, name := range checker.components {
		assert.NotContains(t, name, string(filepath.Separator))
		assert.NotContains(t, name, "/")
	}
	assert.Len(t, checker.paths, 7)
	assert.Len(t, checker.components, 7)
}

func TestWalk_SiblingCheckOncePerDirectory(t *testing.T) {
	root := buildTree(t, "a/x", "a/y", "b/")
	checker := &recordingChecker{}

	_, err := New(checker, Options{}, nil).Walk(context.Background(), root)
	require.NoError(t, err)

	// root, a, b
	require.Len(t, checker.listings, 3)
	assert.Equal(t, []string{"a", "b"}, checker.listings[0])
	assert.Equal(t, []string{"x", "y"}, checker.listings[1])
	assert.Empty(t, checker.listings[2])
}

func TestWalk_Hooks(t *testing.T) {
	root := buildTree(t, "d/f.txt")
	var files, dirs []string

	opts := Options{
		FileHook: func(e Entry) []rules.Warning {
			files = append(files, e.Name)
			return nil
		},
		DirectoryHook: func(e Entry) []rules.Warning {
			dirs = append(dirs, e.Name)
			return nil
		},
	}
	_, err := New(rules.NewEngine(rules.DefaultRuleSet()), opts, nil).Walk(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"f.txt"}, files)
	assert.Equal(t, []string{filepath.Base(root), "d"}, dirs)
}

func TestWalk_PermissionDenied(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	root := buildTree(t, "locked/secret.txt", "open/ok.txt")
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Chmod(locked, 0000))
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	res, err := newWalker(false).Walk(context.Background(), root)
	require.NoError(t, err)

	assert.Contains(t, relVisited(t, root, res), "open/ok.txt")
	require.Len(t, res.Errors, 1)
	assert.Equal(t, KindPermission, KindOf(res.Errors[0]))

	require.Len(t, res.Findings, 1)
	assert.Equal(t, locked, res.Findings[0].Path)
	assert.Equal(t, rules.RuleUnreadable, res.Findings[0].Warnings[0].Rule)
}

func TestWalk_UnsearchableDirectoryPrunesHidden(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	root := buildTree(t, "dir/visible", "dir/.hidden")
	dir := filepath.Join(root, "dir")
	// listable but not searchable: children cannot be stat'ed
	require.NoError(t, os.Chmod(dir, 0644))
	t.Cleanup(func() { os.Chmod(dir, 0755) })

	res, err := newWalker(false).Walk(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, ".hidden")}, res.Pruned)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, filepath.Join(dir, "visible"), res.Findings[0].Path)
	assert.Equal(t, rules.RuleUnreadable, res.Findings[0].Warnings[0].Rule)
}

func TestWalk_ContextCanceled(t *testing.T) {
	root := buildTree(t, "a.txt")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newWalker(false).Walk(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWalk_SingleFileRoot(t *testing.T) {
	root := buildTree(t, "file?.txt")
	target := filepath.Join(root, "file?.txt")

	res, err := newWalker(false).Walk(context.Background(), target)
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.False(t, res.Entries[0].IsDir)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, rules.RuleCharacter, res.Findings[0].Warnings[0].Rule)
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden(".git"))
	assert.True(t, IsHidden(".."))
	assert.False(t, IsHidden("."))
	assert.False(t, IsHidden("visible"))
}

func TestRootComponent(t *testing.T) {
	name, ok := rootComponent("/")
	assert.False(t, ok)
	assert.Equal(t, "/", name)

	name, ok = rootComponent("some/dir/")
	assert.True(t, ok)
	assert.Equal(t, "dir", name)

	name, ok = rootComponent(".")
	assert.True(t, ok)
	assert.NotEqual(t, ".", name)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindOther, KindOf(errors.New("boom")))
	wrapped := &PermissionError{Path: "/x", Op: "list", Err: os.ErrPermission}
	assert.Equal(t, KindPermission, KindOf(wrapped))
	assert.ErrorIs(t, wrapped, os.ErrPermission)
	assert.Equal(t, "permission denied", KindPermission.String())
}
