package importer

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/baderkha/sql2doc/pkg/migrate/artifact"
	"github.com/baderkha/sql2doc/pkg/migrate/config/targetcfg"
	"github.com/baderkha/sql2doc/pkg/migrate/importer/mock"
	"github.com/baderkha/sql2doc/pkg/migrate/table"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/mock/gomock"
)

func usersRequest() Request {
	return Request{
		Table:            "users",
		Database:         "docs",
		DestinationTable: "users",
		Rows:             table.RowSet{{"id": int64(1)}, {"id": int64(2)}},
	}
}

func TestRethinkImportCommand(t *testing.T) {
	tool := RethinkImport{Cfg: targetcfg.RethinkDB{Host: "rdb", DB: "docs", AuthKey: "k"}}
	req := usersRequest()
	req.DestinationTable = "users_v2"
	req.Force = true

	name, args := tool.Command(artifact.Handle{Path: "/tmp/users.json"}, req)
	assert.Equal(t, "rethinkdb", name)
	assert.Equal(t, []string{
		"import", "-f", "/tmp/users.json", "--table", "docs.users_v2", "-c", "rdb:28015", "-a", "k", "--force",
	}, args)
}

func TestMongoImportCommand(t *testing.T) {
	tool := MongoImport{Cfg: targetcfg.Mongo{URI: "mongodb://m", DB: "docs"}}

	name, args := tool.Command(artifact.Handle{Path: "/tmp/users.json"}, usersRequest())
	assert.Equal(t, "mongoimport", name)
	assert.Equal(t, []string{
		"--uri", "mongodb://m", "--db", "docs", "--collection", "users", "--file", "/tmp/users.json", "--jsonArray",
	}, args)
}

func TestCommandLoaderFailureKeepsDiagnostics(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mock.NewMockRunner(ctrl)
	runner.EXPECT().
		Run(gomock.Any(), "rethinkdb", "import", "-f", "/tmp/u.json", "--table", "docs.users", "-c", "localhost:28015").
		Return([]byte("Error: Table `docs.users` already exists\n"), errors.New("exit status 1"))

	loader := NewCommandLoader(runner, RethinkImport{Cfg: targetcfg.RethinkDB{DB: "docs"}})
	err := loader.Load(context.Background(), artifact.Handle{Path: "/tmp/u.json"}, usersRequest())
	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, "Error: Table `docs.users` already exists\n", string(exitErr.Output))
	assert.Contains(t, err.Error(), "exit status 1")
	assert.Contains(t, err.Error(), "already exists")
}

func TestCommandLoaderSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	runner := mock.NewMockRunner(ctrl)
	runner.EXPECT().
		Run(gomock.Any(), "mongoimport", "--uri", "mongodb://m", "--db", "docs", "--collection", "users", "--file", "/tmp/u.json", "--jsonArray", "--drop").
		Return([]byte("2 document(s) imported successfully"), nil)

	req := usersRequest()
	req.Force = true
	loader := NewCommandLoader(runner, MongoImport{Cfg: targetcfg.Mongo{URI: "mongodb://m"}})
	assert.NoError(t, loader.Load(context.Background(), artifact.Handle{Path: "/tmp/u.json"}, req))
}

func TestExecRunnerMissingBinary(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), "sql2doc-no-such-binary")
	assert.Error(t, err)
}

type loaderFunc func(ctx context.Context, h artifact.Handle, req Request) error

func (f loaderFunc) Load(ctx context.Context, h artifact.Handle, req Request) error {
	return f(ctx, h, req)
}

type archiverFunc func(ctx context.Context, h artifact.Handle) error

func (f archiverFunc) Archive(ctx context.Context, h artifact.Handle) error {
	return f(ctx, h)
}

func TestAdapterReleasesArtifactOnSuccessAndFailure(t *testing.T) {
	for _, loadErr := range []error{nil, errors.New("loader exploded")} {
		fs := afero.NewMemMapFs()
		m := artifact.NewMaterializer(fs, "/tmp/run")
		var seen string
		a := NewAdapter(m, loaderFunc(func(ctx context.Context, h artifact.Handle, req Request) error {
			seen = h.Path
			b, err := afero.ReadFile(fs, h.Path)
			require.NoError(t, err)
			assert.JSONEq(t, `[{"id":1},{"id":2}]`, string(b))
			return loadErr
		}), zerolog.Nop())

		err := a.Import(context.Background(), usersRequest())
		if loadErr != nil {
			assert.ErrorIs(t, err, loadErr)
		} else {
			assert.NoError(t, err)
		}
		require.NotEmpty(t, seen)
		exists, err := afero.Exists(fs, seen)
		require.NoError(t, err)
		assert.False(t, exists, "artifact must be gone after Import returns")
	}
}

func TestAdapterMaterializeFailureIsArtifactError(t *testing.T) {
	m := artifact.NewMaterializer(afero.NewReadOnlyFs(afero.NewMemMapFs()), "/tmp/run")
	called := false
	a := NewAdapter(m, loaderFunc(func(context.Context, artifact.Handle, Request) error {
		called = true
		return nil
	}), zerolog.Nop())

	err := a.Import(context.Background(), usersRequest())
	assert.ErrorIs(t, err, ErrArtifact)
	assert.False(t, called)
}

func TestAdapterArchivesOnlySuccessfulImports(t *testing.T) {
	fs := afero.NewMemMapFs()
	m := artifact.NewMaterializer(fs, "/tmp/run")
	archived := 0
	ar := archiverFunc(func(ctx context.Context, h artifact.Handle) error {
		archived++
		return errors.New("s3 is down")
	})

	ok := NewAdapter(m, loaderFunc(func(context.Context, artifact.Handle, Request) error { return nil }), zerolog.Nop()).WithArchiver(ar)
	assert.NoError(t, ok.Import(context.Background(), usersRequest()), "archive failures are not escalated")

	bad := NewAdapter(m, loaderFunc(func(context.Context, artifact.Handle, Request) error { return errors.New("nope") }), zerolog.Nop()).WithArchiver(ar)
	assert.Error(t, bad.Import(context.Background(), usersRequest()))

	assert.Equal(t, 1, archived)
}

type fakeS3 struct {
	s3iface.S3API
	mu   sync.Mutex
	puts map[string]string
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts[aws.StringValue(in.Bucket)+"/"+aws.StringValue(in.Key)] = string(b)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Archiver(t *testing.T) {
	fs := afero.NewMemMapFs()
	m := artifact.NewMaterializer(fs, "/tmp/run")
	h, err := m.Materialize("users", table.RowSet{{"id": int64(1)}})
	require.NoError(t, err)

	client := &fakeS3{puts: map[string]string{}}
	ar := NewS3Archiver(client, m, "exports", "sql2doc/run_id=abc")
	require.NoError(t, ar.Archive(context.Background(), h))

	body, ok := client.puts["exports/"+ar.Key(h)]
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":1}]`, body)
	assert.Contains(t, ar.Key(h), "sql2doc/run_id=abc/users_")
}

type fakeCollection struct {
	dropped  bool
	inserted []interface{}
}

func (c *fakeCollection) Drop(ctx context.Context) error {
	c.dropped = true
	return nil
}

func (c *fakeCollection) InsertMany(ctx context.Context, docs []interface{}, _ ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	c.inserted = append(c.inserted, docs...)
	return &mongo.InsertManyResult{}, nil
}

func newFakeMongoLoader(m *artifact.Materializer, coll *fakeCollection) *MongoLoader {
	return &MongoLoader{
		open:       m,
		collection: func(db string, name string) Collection { return coll },
	}
}

func TestMongoLoaderInsertsDocuments(t *testing.T) {
	m := artifact.NewMaterializer(afero.NewMemMapFs(), "/tmp/run")
	h, err := m.Materialize("users", table.RowSet{{"id": int64(7), "name": "ada", "score": 1.5}})
	require.NoError(t, err)

	coll := &fakeCollection{}
	req := usersRequest()
	req.Force = true
	require.NoError(t, newFakeMongoLoader(m, coll).Load(context.Background(), h, req))

	assert.True(t, coll.dropped)
	require.Len(t, coll.inserted, 1)
	doc := coll.inserted[0].(bson.D).Map()
	assert.Equal(t, int32(7), doc["id"])
	assert.Equal(t, "ada", doc["name"])
	assert.Equal(t, 1.5, doc["score"])
}

func TestMongoLoaderEmptyTable(t *testing.T) {
	m := artifact.NewMaterializer(afero.NewMemMapFs(), "/tmp/run")
	h, err := m.Materialize("users", nil)
	require.NoError(t, err)

	coll := &fakeCollection{}
	require.NoError(t, newFakeMongoLoader(m, coll).Load(context.Background(), h, usersRequest()))
	assert.False(t, coll.dropped)
	assert.Empty(t, coll.inserted)
}

func TestMongoLoaderMissingArtifact(t *testing.T) {
	m := artifact.NewMaterializer(afero.NewMemMapFs(), "/tmp/run")
	err := newFakeMongoLoader(m, &fakeCollection{}).Load(context.Background(), artifact.Handle{Path: "/tmp/run/gone.json"}, usersRequest())
	assert.ErrorIs(t, err, ErrArtifact)
}
