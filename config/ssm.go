package config

import (
	"context"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rotisserie/eris"
)

// ParameterLister is the subset of the SSM client used to read a parameter path.
type ParameterLister interface {
	GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error)
}

// NewSSMClient builds an SSM client from the default AWS credential chain.
func NewSSMClient(ctx context.Context, region string) (*ssm.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "loading aws config")
	}
	return ssm.NewFromConfig(awsCfg), nil
}

// LoadSSMParameters copies every parameter stored under parameterPath into cfg,
// keyed by the last path segment ("/portfolio/prod/RESEND_API_KEY" -> "RESEND_API_KEY").
// Values already present in cfg are overwritten. It returns the number of keys loaded.
func LoadSSMParameters(ctx context.Context, client ParameterLister, cfg map[string]string, parameterPath string) (int, error) {
	if client == nil {
		return 0, eris.New("ssm client is required")
	}
	if !strings.HasPrefix(parameterPath, "/") {
		parameterPath = "/" + parameterPath
	}

	loaded := 0
	paginator := ssm.NewGetParametersByPathPaginator(client, &ssm.GetParametersByPathInput{
		Path:           aws.String(parameterPath),
		Recursive:      aws.Bool(true),
		WithDecryption: aws.Bool(true),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return loaded, eris.Wrapf(err, "reading ssm parameters under %s", parameterPath)
		}
		for _, param := range page.Parameters {
			name := aws.ToString(param.Name)
			if name == "" {
				continue
			}
			cfg[path.Base(name)] = aws.ToString(param.Value)
			loaded++
		}
	}

	return loaded, nil
}
