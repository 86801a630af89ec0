package sqlsession_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	sqlsession "github.com/TechXTT/sqlsession"
	"github.com/TechXTT/sqlsession/pkg/dialect"
	"github.com/TechXTT/sqlsession/pkg/schema"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type User struct {
	ID   int
	Name string
	Age  int
}

var (
	userName = sqlsession.NewField[User, string]("name")
	userAge  = sqlsession.NewField[User, int]("age")
)

func sqliteSession(t *testing.T) *sqlsession.Session {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "database.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	models, err := schema.New(User{})
	require.NoError(t, err)

	s, err := sqlsession.New(context.Background(), sqlsession.WithEngine(db, dialect.SQLite, models))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndRead(t *testing.T) {
	ctx := context.Background()
	s := sqliteSession(t)

	newUser := User{Name: "Kesler", Age: 22}
	require.NoError(t, sqlsession.Create(ctx, s, &newUser))
	require.NotZero(t, newUser.ID)

	got, err := sqlsession.Read(ctx, s, sqlsession.Eq(userName, "Kesler"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	if diff := cmp.Diff(newUser, got[0]); diff != "" {
		t.Errorf("read back mismatch (-want +got):\n%s", diff)
	}
}

func TestKeslerScenario(t *testing.T) {
	ctx := context.Background()
	s := sqliteSession(t)

	require.NoError(t, sqlsession.Create(ctx, s, &User{Name: "Kesler", Age: 22}))

	got, err := sqlsession.Read(ctx, s, sqlsession.Eq(userName, "Kesler"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 22, got[0].Age)

	require.NoError(t, sqlsession.Update(ctx, s, userName, "Paul", sqlsession.Eq(userName, "Kesler")))

	got, err = sqlsession.Read(ctx, s, sqlsession.Eq(userName, "Paul"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 22, got[0].Age)

	stale, err := sqlsession.Read(ctx, s, sqlsession.Eq(userName, "Kesler"))
	require.NoError(t, err)
	assert.Empty(t, stale)

	require.NoError(t, sqlsession.Delete(ctx, s, sqlsession.Eq(userName, "Paul")))
	got, err = sqlsession.Read(ctx, s, sqlsession.Eq(userName, "Paul"))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	// a second delete matches nothing
	require.NoError(t, sqlsession.Delete(ctx, s, sqlsession.Eq(userName, "Paul")))
}

func TestReadAllAndCombinedPredicates(t *testing.T) {
	ctx := context.Background()
	s := sqliteSession(t)

	for _, u := range []User{{Name: "Alice", Age: 30}, {Name: "Bob", Age: 30}, {Name: "Alice", Age: 41}} {
		u := u
		require.NoError(t, sqlsession.Create(ctx, s, &u))
	}

	all, err := sqlsession.ReadAll[User](ctx, s)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	got, err := sqlsession.Read(ctx, s, sqlsession.Eq(userName, "Alice"), sqlsession.Eq(userAge, 30))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Alice", got[0].Name)
	assert.Equal(t, 30, got[0].Age)

	got, err = sqlsession.Read(ctx, s, sqlsession.Match[User](map[string]any{"age": 30}))
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestAnd_CombinesIntoOnePredicate(t *testing.T) {
	ctx := context.Background()
	s := sqliteSession(t)

	for _, u := range []User{{Name: "Alice", Age: 30}, {Name: "Alice", Age: 41}, {Name: "Bob", Age: 41}} {
		u := u
		require.NoError(t, sqlsession.Create(ctx, s, &u))
	}

	older := sqlsession.And(sqlsession.Eq(userName, "Alice"), sqlsession.Eq(userAge, 41))
	got, err := sqlsession.Read(ctx, s, older)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 41, got[0].Age)

	require.NoError(t, sqlsession.Delete(ctx, s, older))
	left, err := sqlsession.ReadAll[User](ctx, s)
	require.NoError(t, err)
	assert.Len(t, left, 2)

	// And of nothing matches every row
	got, err = sqlsession.Read(ctx, s, sqlsession.And[User]())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestUpdateColumn_AllMatchingRows(t *testing.T) {
	ctx := context.Background()
	s := sqliteSession(t)

	require.NoError(t, sqlsession.Create(ctx, s, &User{Name: "Alice", Age: 1}))
	require.NoError(t, sqlsession.Create(ctx, s, &User{Name: "Alice", Age: 2}))

	require.NoError(t, sqlsession.UpdateColumn(ctx, s, "age", 9, sqlsession.Eq(userName, "Alice")))

	got, err := sqlsession.Read(ctx, s, sqlsession.Eq(userName, "Alice"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, u := range got {
		assert.Equal(t, 9, u.Age)
	}
}

func TestDelete_NoPredicateRemovesEverything(t *testing.T) {
	ctx := context.Background()
	s := sqliteSession(t)

	require.NoError(t, sqlsession.Create(ctx, s, &User{Name: "A"}))
	require.NoError(t, sqlsession.Create(ctx, s, &User{Name: "B"}))
	require.NoError(t, sqlsession.Delete[User](ctx, s))

	all, err := sqlsession.ReadAll[User](ctx, s)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRead_UnknownColumnFailsInStore(t *testing.T) {
	ctx := context.Background()
	s := sqliteSession(t)

	_, err := sqlsession.Read(ctx, s, sqlsession.Match[User](map[string]any{"nickname": "x"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such column")

	err = sqlsession.UpdateColumn[User](ctx, s, "nickname", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such column")
}

func TestSessionReopenKeepsRows(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "database.sqlite3"))
	require.NoError(t, err)
	defer db.Close()
	models, err := schema.New(User{})
	require.NoError(t, err)

	s, err := sqlsession.New(ctx, sqlsession.WithEngine(db, dialect.SQLite, models))
	require.NoError(t, err)
	require.NoError(t, sqlsession.Create(ctx, s, &User{Name: "Kesler", Age: 22}))
	require.NoError(t, s.Close())

	s, err = sqlsession.New(ctx, sqlsession.WithEngine(db, dialect.SQLite, models))
	require.NoError(t, err)
	defer s.Close()

	got, err := sqlsession.ReadAll[User](ctx, s)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
