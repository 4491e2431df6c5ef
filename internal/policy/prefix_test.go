package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MathBio-Lab/s3-output-manager/internal/domain"
)

func admin() domain.Principal {
	return domain.Principal{ID: 1, Username: "admin", Role: domain.RoleAdmin}
}

func client(home string) domain.Principal {
	return domain.Principal{ID: 2, Username: "client1", Role: domain.RoleClient, HomePrefix: home}
}

func TestAuthorizeAdminPassesAnyPath(t *testing.T) {
	t.Parallel()
	p := New("")

	for _, path := range []string{"", "karen/", "karen/2024/report.pdf", "other-client/x/"} {
		got, err := p.Authorize(admin(), path, OpList)
		require.NoError(t, err, "path %q", path)
		assert.Equal(t, path, got)
	}
}

func TestAuthorizeRestrictedPrincipal(t *testing.T) {
	t.Parallel()
	p := New("")
	pr := client("karen/")

	tests := []struct {
		name      string
		requested string
		op        Operation
		want      string
		wantErr   error
	}{
		{name: "empty path resolves to home", requested: "", op: OpList, want: "karen/"},
		{name: "home without trailing slash tolerated", requested: "karen", op: OpList, want: "karen/"},
		{name: "exact home", requested: "karen/", op: OpList, want: "karen/"},
		{name: "contained subfolder", requested: "karen/sub/", op: OpList, want: "karen/sub/"},
		{name: "contained key", requested: "karen/a.txt", op: OpDownload, want: "karen/a.txt"},
		{name: "foreign prefix denied", requested: "other/", op: OpList, wantErr: domain.ErrForbidden},
		{name: "foreign key denied", requested: "other-client/file.txt", op: OpDelete, wantErr: domain.ErrForbidden},
		{name: "prefix sharing first chars denied", requested: "karenina/", op: OpList, wantErr: domain.ErrForbidden},
		{name: "dotdot segment rejected", requested: "karen/../other/", op: OpList, wantErr: domain.ErrBadParams},
		{name: "backslash rejected", requested: `karen\evil`, op: OpList, wantErr: domain.ErrBadParams},
		{name: "leading slash rejected", requested: "/karen/", op: OpList, wantErr: domain.ErrBadParams},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := p.Authorize(pr, tc.requested, tc.op)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAuthorizeFolderShapedOpsEnsureTrailingSlash(t *testing.T) {
	t.Parallel()
	p := New("")
	pr := client("karen/")

	for _, op := range []Operation{OpUpload, OpDeleteTree, OpCreateFolder, OpZip} {
		got, err := p.Authorize(pr, "karen/sub", op)
		require.NoError(t, err, "op %s", op)
		assert.Equal(t, "karen/sub/", got, "op %s", op)
	}
}

func TestAuthorizeListKeepsPathVerbatim(t *testing.T) {
	t.Parallel()
	p := New("")
	pr := client("karen/")

	got, err := p.Authorize(pr, "karen/2024", OpList)
	require.NoError(t, err)
	assert.Equal(t, "karen/2024", got)
}

func TestAuthorizeComposesRootPrefix(t *testing.T) {
	t.Parallel()
	p := New("outputs") // нормализуется в "outputs/"

	got, err := p.Authorize(client("karen/"), "", OpList)
	require.NoError(t, err)
	assert.Equal(t, "outputs/karen/", got)

	got, err = p.Authorize(admin(), "karen/2024/", OpZip)
	require.NoError(t, err)
	assert.Equal(t, "outputs/karen/2024/", got)

	// принадлежность проверяется до подстановки root
	_, err = p.Authorize(client("karen/"), "outputs/karen/", OpList)
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestJoinKeyRejectsSeparators(t *testing.T) {
	t.Parallel()
	p := New("")

	for _, bad := range []string{"", ".", "..", "a/b.txt", `a\b.txt`} {
		_, err := p.JoinKey("karen/", bad)
		assert.ErrorIs(t, err, domain.ErrBadParams, "name %q", bad)
		_, err = p.JoinFolder("karen/", bad)
		assert.ErrorIs(t, err, domain.ErrBadParams, "name %q", bad)
	}

	key, err := p.JoinKey("karen/", "report.pdf")
	require.NoError(t, err)
	assert.Equal(t, "karen/report.pdf", key)

	folder, err := p.JoinFolder("karen/", "2025")
	require.NoError(t, err)
	assert.Equal(t, "karen/2025/", folder)
}

func TestAuthorizeDeleteTreeAlwaysEndsWithSlash(t *testing.T) {
	t.Parallel()
	p := New("")

	got, err := p.Authorize(client("karen/"), "karen/old", OpDeleteTree)
	require.NoError(t, err)
	assert.Equal(t, "karen/old/", got)
}
