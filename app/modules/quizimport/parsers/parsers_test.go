package parsers

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

const sampleCSV = `round,type,prompt,answer,options,rewards,thinking_time
Warmup,basic,Capital of France?,Paris,,2,20
Warmup,basic,Largest planet?,Jupiter,,2,20
Movies,mcq,Director of Jaws?,Spielberg,Kubrick|Spielberg|Scott,3,30
`

func TestFactory_GetParser(t *testing.T) {
	factory := NewFactory()
	tests := []struct {
		name     string
		filename string
		want     string
		wantErr  bool
	}{
		{name: "csv file", filename: "quiz.csv", want: "csv"},
		{name: "xlsx file", filename: "quiz.xlsx", want: "xlsx"},
		{name: "xls file", filename: "quiz.xls", want: "xlsx"},
		{name: "unsupported file", filename: "quiz.txt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser, err := factory.GetParser(tt.filename)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			switch tt.want {
			case "csv":
				_, ok := parser.(*CSVParser)
				require.True(t, ok)
			case "xlsx":
				_, ok := parser.(*XLSXParser)
				require.True(t, ok)
			default:
				t.Fatalf("unexpected parser type %q", tt.want)
			}
		})
	}
}

func TestCSVParser_GroupsRowsIntoRounds(t *testing.T) {
	set, err := NewCSVParser().Parse([]byte(sampleCSV))
	require.NoError(t, err)

	require.Len(t, set.Rounds, 2)
	assert.Equal(t, 3, set.QuestionCount())

	warmup := set.Rounds[0]
	assert.Equal(t, "Warmup", warmup.Title)
	assert.Equal(t, types.RoundTypeBasic, warmup.Type)
	assert.Equal(t, []types.Score{2}, warmup.Rewards)
	assert.Equal(t, 20, warmup.ThinkingTime)
	require.Len(t, warmup.Questions, 2)
	assert.Equal(t, "Paris", warmup.Questions[0].Answer)

	movies := set.Rounds[1]
	assert.Equal(t, types.RoundTypeMCQ, movies.Type)
	require.Len(t, movies.Questions, 1)
	assert.Equal(t, []string{"Kubrick", "Spielberg", "Scott"}, movies.Questions[0].Options)
}

func TestCSVParser_Validation(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty file", data: ""},
		{name: "wrong header", data: "a,b,c\n"},
		{name: "header only", data: "round,type,prompt,answer,options,rewards,thinking_time\n"},
		{name: "unknown type", data: "round,type,prompt,answer,options,rewards,thinking_time\nR1,karaoke,Q?,A,,1,\n"},
		{name: "missing prompt", data: "round,type,prompt,answer,options,rewards,thinking_time\nR1,basic,,A,,1,\n"},
		{name: "missing rewards", data: "round,type,prompt,answer,options,rewards,thinking_time\nR1,basic,Q?,A,,,\n"},
		{name: "mcq answer not an option", data: "round,type,prompt,answer,options,rewards,thinking_time\nR1,mcq,Q?,Nope,A|B,1,\n"},
		{name: "mixed types in one round", data: "round,type,prompt,answer,options,rewards,thinking_time\nR1,basic,Q?,A,,1,\nR1,mcq,Q2?,A,A|B,1,\n"},
		{name: "matching pair without separator", data: "round,type,prompt,answer,options,rewards,thinking_time\nR1,matching,Q?,,A-B|C-D,3|2|1,\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCSVParser().Parse([]byte(tt.data))
			require.Error(t, err)
		})
	}
}

func TestXLSXParser_Parse(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]string{
		{"round", "type", "prompt", "answer", "options", "rewards", "thinking_time"},
		{"Finale", "enumeration", "Name planets", "", "Mercury|Venus|Earth", "1", "60"},
	}
	for i, row := range rows {
		for j, cell := range row {
			name, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", name, cell))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	set, err := NewXLSXParser().Parse(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, set.Rounds, 1)
	assert.Equal(t, types.RoundTypeEnumeration, set.Rounds[0].Type)
	require.Len(t, set.Rounds[0].Questions, 1)
	assert.Len(t, set.Rounds[0].Questions[0].Options, 3)
}

func TestCSVParser_HandlesLargeSets(t *testing.T) {
	faker := gofakeit.New(42)

	var sb strings.Builder
	sb.WriteString("round,type,prompt,answer,options,rewards,thinking_time\n")
	for round := 0; round < 10; round++ {
		for q := 0; q < 12; q++ {
			fmt.Fprintf(&sb, "Round %d,basic,%s?,%s,,1,15\n",
				round, faker.Word(), faker.Word())
		}
	}

	set, err := NewCSVParser().Parse([]byte(sb.String()))
	require.NoError(t, err)
	require.Len(t, set.Rounds, 10)
	assert.Equal(t, 120, set.QuestionCount())
}

func TestXLSXParser_RejectsNonZip(t *testing.T) {
	_, err := NewXLSXParser().Parse([]byte("round,type\n"))
	require.Error(t, err)
}

func TestParsedRound_ToDomain(t *testing.T) {
	gameID := types.NewGameID()

	t.Run("per question reward", func(t *testing.T) {
		pr := ParsedRound{
			Title:   "Warmup",
			Type:    types.RoundTypeBasic,
			Rewards: []types.Score{2},
			Questions: []ParsedQuestion{
				{Prompt: "Q1?", Answer: "A1"},
				{Prompt: "Q2?", Answer: "A2"},
			},
		}
		round, questions := pr.ToDomain(gameID)
		assert.Equal(t, types.Score(2), round.RewardsPerQuestion)
		assert.Equal(t, -1, round.CurrentQuestionIdx)
		require.Len(t, questions, 2)
		assert.Equal(t, round.QuestionIDs[1], questions[1].ID)
		assert.Equal(t, "A1", questions[0].AnswerText)
	})

	t.Run("ranking rewards table", func(t *testing.T) {
		pr := ParsedRound{
			Title:   "Grid",
			Type:    types.RoundTypeMatching,
			Rewards: []types.Score{5, 3, 1},
			Questions: []ParsedQuestion{
				{Prompt: "Match", Options: []string{"a=1", "b=2"}},
			},
		}
		round, questions := pr.ToDomain(gameID)
		assert.Equal(t, types.ScoringModeRanking, round.ScoringMode)
		assert.Equal(t, []types.Score{5, 3, 1}, round.RankingRewards)
		require.Len(t, questions[0].Pairs, 2)
		assert.Equal(t, "a", questions[0].Pairs[0].Left)
	})

	t.Run("element unit reward", func(t *testing.T) {
		pr := ParsedRound{
			Title:   "Finale",
			Type:    types.RoundTypeEnumeration,
			Rewards: []types.Score{1},
			Questions: []ParsedQuestion{
				{Prompt: "Planets", Options: []string{"Mercury", "Venus"}},
			},
		}
		round, questions := pr.ToDomain(gameID)
		assert.Equal(t, types.Score(1), round.RewardsPerElement)
		assert.Equal(t, 2, questions[0].EnumTarget)
		assert.Equal(t, []string{"Mercury", "Venus"}, questions[0].EnumAnswers)
	})

	t.Run("mcq answer index", func(t *testing.T) {
		pr := ParsedRound{
			Title:   "Movies",
			Type:    types.RoundTypeMCQ,
			Rewards: []types.Score{3},
			Questions: []ParsedQuestion{
				{Prompt: "Q?", Answer: "Spielberg", Options: []string{"Kubrick", "Spielberg"}},
			},
		}
		_, questions := pr.ToDomain(gameID)
		assert.Equal(t, 1, questions[0].AnswerIdx)
	})
}
