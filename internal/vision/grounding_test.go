package vision

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveMidpoints(t *testing.T) {
	loc := Localization{
		Start:    "red cube",
		StartBox: Box{{100, 500}, {300, 860}},
		End:      "box",
		EndBox:   Box{{400, 100}, {600, 300}},
	}

	mp, err := Resolve("put the red cube in the box", loc)
	require.NoError(t, err)
	require.Equal(t, Point{X: 200, Y: 680}, mp.Source)
	require.Equal(t, Point{X: 500, Y: 200}, mp.Target)
}

func TestResolveIntegerDivisionTruncates(t *testing.T) {
	loc := Localization{
		StartBox: Box{{0, 0}, {3, 5}},
		EndBox:   Box{{10, 10}, {20, 20}},
	}

	mp, err := Resolve("move it", loc)
	require.NoError(t, err)
	require.Equal(t, Point{X: 1, Y: 2}, mp.Source)
}

func TestResolveFailsOnZeroBox(t *testing.T) {
	loc := Localization{
		Start:  "ghost",
		End:    "box",
		EndBox: Box{{400, 100}, {600, 300}},
	}

	_, err := Resolve("move the ghost", loc)
	require.ErrorIs(t, err, ErrGroundingFailed)
	require.Contains(t, err.Error(), "ghost")
}

func TestResolveFailsOnDegenerateBox(t *testing.T) {
	loc := Localization{
		StartBox: Box{{100, 100}, {100, 300}},
		EndBox:   Box{{400, 100}, {600, 300}},
	}

	_, err := Resolve("move it", loc)
	require.ErrorIs(t, err, ErrGroundingFailed)
}

func TestParseLocalizationStrict(t *testing.T) {
	loc := ParseLocalization(`{"start":"cube","start_xyxy":[[100,500],[300,860]],"end":"tray","end_xyxy":[[400,100],[600,300]]}`)
	require.Equal(t, "cube", loc.Start)
	require.Equal(t, Box{{100, 500}, {300, 860}}, loc.StartBox)
	require.Equal(t, "tray", loc.End)
}

func TestParseLocalizationStripsFence(t *testing.T) {
	raw := "```json\n{\"start\":\"cube\",\"start_xyxy\":[[1,2],[3,4]],\"end\":\"tray\",\"end_xyxy\":[[5,6],[7,8]]}\n```"
	loc := ParseLocalization(raw)
	require.Equal(t, Box{{1, 2}, {3, 4}}, loc.StartBox)
}

func TestParseLocalizationSkipsPreamble(t *testing.T) {
	raw := `Sure, here is the result: {"start":"cube","start_xyxy":[[1,2],[3,4]],"end":"tray","end_xyxy":[[5,6],[7,8]]}`
	loc := ParseLocalization(raw)
	require.Equal(t, "cube", loc.Start)
	require.Equal(t, Box{{5, 6}, {7, 8}}, loc.EndBox)
}

func TestParseLocalizationMalformedYieldsZeroBoxes(t *testing.T) {
	for _, raw := range []string{"", "not json", "{\"start\": ", "[1,2,3]"} {
		loc := ParseLocalization(raw)
		require.True(t, loc.StartBox.IsZero(), "raw=%q", raw)
		require.True(t, loc.EndBox.IsZero(), "raw=%q", raw)

		_, err := Resolve("anything", loc)
		require.ErrorIs(t, err, ErrGroundingFailed)
	}
}
