package adapter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"mendc.dev/pkg/mendc/internal/cast"
	m "mendc.dev/pkg/mendc/internal/model"
)

func testStem(t *testing.T) m.Stem {
	t.Helper()
	return m.Stem(filepath.Join(t.TempDir(), "prog"))
}

func testFile() *cast.File {
	file := &cast.File{
		Name: "prog.c",
		Decls: []cast.Decl{&cast.FuncDef{
			Header: "int main(void)",
			Body: &cast.Stmt{Kind: &cast.Block{Stmts: []*cast.Stmt{
				{Kind: &cast.Instr{Instrs: []cast.Expr{"int a = 1"}}},
				{Kind: &cast.Return{Expr: "a"}},
			}}},
		}},
	}

	cast.Number(file, 1)

	return file
}

func TestBankRoundTrip(t *testing.T) {
	stems := NewLocalStemAdapter()
	stem := testStem(t)

	require.NoError(t, stems.SaveBank(stem, map[string]*cast.File{"prog.c": testFile()}))

	files, err := stems.LoadBank(stem)
	require.NoError(t, err)
	require.Len(t, files, 1)

	original, err := cast.NewPrinter().Print(testFile(), nil)
	require.NoError(t, err)

	restored, err := cast.NewPrinter().Print(files["prog.c"], nil)
	require.NoError(t, err)

	require.Equal(t, original, restored)
}

func TestIndexInfoRoundTrip(t *testing.T) {
	stems := NewLocalStemAdapter()
	stem := testStem(t)

	info := IndexInfo{Count: 3, Files: map[int]string{1: "prog.c", 2: "prog.c", 3: "prog.c"}}
	require.NoError(t, stems.SaveIndexInfo(stem, info))

	loaded, err := stems.LoadIndexInfo(stem)
	require.NoError(t, err)
	require.Equal(t, info, loaded)
}

func TestLoadWeightedPath(t *testing.T) {
	stems := NewLocalStemAdapter()
	stem := testStem(t)

	require.NoError(t, stems.SavePath(stem.PathFile(), []m.Sid{2, 3, 4}))

	path, err := stems.LoadWeightedPath(stem, 0.5)
	require.NoError(t, err)

	require.Equal(t, m.WeightedPath{
		{Weight: 1.0, Sid: 2},
		{Weight: 1.0, Sid: 3},
		{Weight: 1.0, Sid: 4},
	}, path)
}

func TestLoadWeightedPathAppliesGoodPathFactor(t *testing.T) {
	stems := NewLocalStemAdapter()
	stem := testStem(t)

	require.NoError(t, stems.SavePath(stem.PathFile(), []m.Sid{2, 3, 4}))
	require.NoError(t, stems.SavePath(stem.GoodPathFile(), []m.Sid{3}))

	path, err := stems.LoadWeightedPath(stem, 0.25)
	require.NoError(t, err)

	require.Equal(t, m.WeightedPath{
		{Weight: 1.0, Sid: 2},
		{Weight: 0.25, Sid: 3},
		{Weight: 1.0, Sid: 4},
	}, path)
}

func TestLoadWeightedPathRejectsEmptyFile(t *testing.T) {
	stems := NewLocalStemAdapter()
	stem := testStem(t)

	require.NoError(t, stems.SavePath(stem.PathFile(), nil))

	_, err := stems.LoadWeightedPath(stem, 0)
	require.Error(t, err)
}

func TestLoadWeightedPathRejectsGarbage(t *testing.T) {
	stems := NewLocalStemAdapter()
	stem := testStem(t)

	workdir := NewLocalWorkdirAdapter()
	require.NoError(t, workdir.WriteFile(stem.PathFile(), []byte("2\nnot-a-sid\n")))

	_, err := stems.LoadWeightedPath(stem, 0)
	require.Error(t, err)
}

func TestLoadBankMissingFileFails(t *testing.T) {
	stems := NewLocalStemAdapter()

	_, err := stems.LoadBank(testStem(t))
	require.Error(t, err)
}
