package paramstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"
)

type fakeSSM struct {
	value string
	err   error
	got   *ssm.GetParameterInput
}

func (f *fakeSSM) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.got = in
	if f.err != nil {
		return nil, f.err
	}
	return &ssm.GetParameterOutput{
		Parameter: &ssmtypes.Parameter{Value: &f.value},
	}, nil
}

func TestNew_RequiresAPI(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
}

func TestGetParameter_FetchesDecrypted(t *testing.T) {
	api := &fakeSSM{value: "secret"}
	c, err := New(api)
	require.NoError(t, err)

	v, err := c.GetParameter(context.Background(), "/skill/line-channel-token")
	require.NoError(t, err)
	require.Equal(t, "secret", v)
	require.Equal(t, "/skill/line-channel-token", *api.got.Name)
	require.True(t, *api.got.WithDecryption)
}

func TestGetParameter_RequiresName(t *testing.T) {
	c, err := New(&fakeSSM{})
	require.NoError(t, err)

	_, err = c.GetParameter(context.Background(), "  ")
	require.Error(t, err)
}

func TestGetParameter_PropagatesError(t *testing.T) {
	c, err := New(&fakeSSM{err: errors.New("access denied")})
	require.NoError(t, err)

	_, err = c.GetParameter(context.Background(), "/skill/key")
	require.Error(t, err)
}

type staticGetter struct {
	value string
	err   error
}

func (s *staticGetter) GetParameter(_ context.Context, _ string) (string, error) {
	return s.value, s.err
}

func TestToken_DecodesPayload(t *testing.T) {
	v, err := Token(context.Background(), &staticGetter{value: `{"token":"abc123"}`}, "/skill/key")
	require.NoError(t, err)
	require.Equal(t, "abc123", v)
}

func TestToken_Failures(t *testing.T) {
	_, err := Token(context.Background(), nil, "/skill/key")
	require.Error(t, err)

	_, err = Token(context.Background(), &staticGetter{err: errors.New("nope")}, "/skill/key")
	require.Error(t, err)

	_, err = Token(context.Background(), &staticGetter{value: `not-json`}, "/skill/key")
	require.Error(t, err)

	_, err = Token(context.Background(), &staticGetter{value: `{"token":""}`}, "/skill/key")
	require.Error(t, err)
}
