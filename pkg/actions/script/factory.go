package script

import (
	"errors"

	"github.com/platine-go/workflow/pkg/actions"
)

var ErrMissingScript = errors.New("script action requires a 'script' config key")

func NewScriptActionFactory() *ScriptActionFactory {
	return &ScriptActionFactory{}
}

type ScriptActionFactory struct {
}

func (*ScriptActionFactory) ID() string {
	return "script"
}

func (f *ScriptActionFactory) Create(config map[string]any) (actions.Action, error) {
	script, _ := config["script"].(string)
	if script == "" {
		return nil, ErrMissingScript
	}

	return NewScriptAction(script), nil
}
