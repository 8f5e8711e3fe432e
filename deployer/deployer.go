package deployer

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"strings"
	"text/tabwriter"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/pkg/errors"

	"github.com/piontas/cfndeployer/awsconn"
	"github.com/piontas/cfndeployer/cfnstack"
	"github.com/piontas/cfndeployer/cfntemplate"
	"github.com/piontas/cfndeployer/config"
)

// VERSION set by build script
var VERSION = "UNKNOWN"

// Deployer drives the whole lifecycle of one configured stack: rendering
// the template, submitting it to CloudFormation and inspecting the result.
type Deployer struct {
	cfg     *config.Config
	session *session.Session
}

func New(cfg *config.Config, awsDebug bool) (*Deployer, error) {
	if err := cfg.ValidateVersion(VERSION); err != nil {
		return nil, err
	}

	sess, err := awsconn.NewSessionFromRegion(cfg.Region, awsDebug)
	if err != nil {
		return nil, err
	}

	return &Deployer{
		cfg:     cfg,
		session: sess,
	}, nil
}

func (d *Deployer) Config() *config.Config {
	return d.cfg
}

func (d *Deployer) cfSvc() cfnstack.CRUDService {
	return cloudformation.New(d.session)
}

func (d *Deployer) s3Svc() *s3.S3 {
	return s3.New(d.session)
}

func (d *Deployer) provisioner() (*cfnstack.Provisioner, error) {
	stackPolicyBody := ""
	if d.cfg.StackPolicyFile != "" {
		data, err := ioutil.ReadFile(d.cfg.StackPolicyFile)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read stack policy %s", d.cfg.StackPolicyFile)
		}
		stackPolicyBody = string(data)
	}

	p := cfnstack.NewProvisioner(
		d.cfg.StackName,
		d.cfg.Tags,
		d.cfg.Parameters,
		stackPolicyBody,
		d.cfg.S3URI,
		d.cfg.Region,
		d.session,
	).WithCapabilities(d.cfg.Capabilities).WithCreateOptions(cfnstack.CreateOptions{
		OnFailure:        d.cfg.OnFailure,
		DisableRollback:  d.cfg.DisableRollback,
		TimeoutInMinutes: d.cfg.TimeoutInMinutes,
	})
	return p, nil
}

// ValidateTemplate checks the rendered template locally, then has
// CloudFormation validate it the way it would at submission time.
func (d *Deployer) ValidateTemplate(stackBody string) (string, error) {
	t, err := cfntemplate.Parse([]byte(stackBody))
	if err != nil {
		return "", err
	}
	if err := t.Validate(); err != nil {
		return "", err
	}
	if err := t.ValidateParameters(d.cfg.Parameters); err != nil {
		return "", err
	}

	p, err := d.provisioner()
	if err != nil {
		return "", err
	}
	return p.Validate(stackBody)
}

// Create submits the stack and waits for the engine to finish creating it.
func (d *Deployer) Create(stackBody string) error {
	p, err := d.provisioner()
	if err != nil {
		return err
	}
	return p.CreateStackAndWait(d.cfSvc(), d.s3Svc(), stackBody)
}

// Update submits an update to an existing stack and waits for it to settle.
func (d *Deployer) Update(stackBody string) (string, error) {
	p, err := d.provisioner()
	if err != nil {
		return "", err
	}
	return p.UpdateStackAndWait(d.cfSvc(), d.s3Svc(), stackBody)
}

// Deploy runs the change-set flow, creating or updating whichever the
// stack's current state calls for.
func (d *Deployer) Deploy(stackBody string, execute bool) (*cfnstack.ChangeSet, error) {
	p, err := d.provisioner()
	if err != nil {
		return nil, err
	}
	return p.Deploy(d.cfSvc(), d.s3Svc(), stackBody, execute)
}

// Destroy asks the engine to delete the stack and waits until it is gone.
func (d *Deployer) Destroy() error {
	p, err := d.provisioner()
	if err != nil {
		return err
	}
	return p.DeleteStackAndWait(d.cfSvc())
}

// EstimateCost returns the AWS cost calculator URLs for the template.
func (d *Deployer) EstimateCost(stackBody string) ([]string, error) {
	p, err := d.provisioner()
	if err != nil {
		return nil, err
	}

	estimate, err := p.EstimateTemplateCost(d.cfSvc(), stackBody)
	if err != nil {
		return nil, err
	}

	return []string{aws.StringValue(estimate.Url)}, nil
}

// Info describes the deployed stack.
type Info struct {
	Name    string
	Status  string
	Reason  string
	Outputs map[string]string
}

func (i *Info) String() string {
	buf := new(bytes.Buffer)
	w := new(tabwriter.Writer)
	w.Init(buf, 0, 8, 0, '\t', 0)

	fmt.Fprintf(w, "Stack Name:\t%s\n", i.Name)
	fmt.Fprintf(w, "Status:\t%s\n", i.Status)
	if i.Reason != "" {
		fmt.Fprintf(w, "Reason:\t%s\n", i.Reason)
	}
	for k, v := range i.Outputs {
		fmt.Fprintf(w, "Output %s:\t%s\n", k, v)
	}

	w.Flush()
	return buf.String()
}

// Info fetches the deployed stack's status and outputs.
func (d *Deployer) Info() (*Info, error) {
	return StackInfo(d.cfSvc(), d.cfg.StackName)
}

// StackInfo is split from Info so tests can feed it a stubbed service.
func StackInfo(cfSvc cfnstack.CFInterrogator, stackName string) (*Info, error) {
	resp, err := cfSvc.DescribeStacks(&cloudformation.DescribeStacksInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to describe stack %s", stackName)
	}
	if len(resp.Stacks) == 0 {
		return nil, errors.Wrapf(cfnstack.ErrStackNotFound, "stack %s", stackName)
	}

	stack := resp.Stacks[0]
	info := &Info{
		Name:    aws.StringValue(stack.StackName),
		Status:  aws.StringValue(stack.StackStatus),
		Reason:  aws.StringValue(stack.StackStatusReason),
		Outputs: map[string]string{},
	}
	for _, output := range stack.Outputs {
		info.Outputs[aws.StringValue(output.OutputKey)] = aws.StringValue(output.OutputValue)
	}
	return info, nil
}

// DeployedTemplate fetches the template body the engine currently holds
// for the stack.
func (d *Deployer) DeployedTemplate() (string, error) {
	resp, err := d.cfSvc().GetTemplate(&cloudformation.GetTemplateInput{
		StackName: aws.String(d.cfg.StackName),
	})
	if err != nil {
		if strings.Contains(err.Error(), "does not exist") {
			return "", errors.Wrapf(cfnstack.ErrStackNotFound, "stack %s", d.cfg.StackName)
		}
		return "", err
	}
	return aws.StringValue(resp.TemplateBody), nil
}
