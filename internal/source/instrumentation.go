package source

// RegisterFunction is the lifecycle hook Next.js calls once per server
// start.
const RegisterFunction = "register"

// InstrumentationFile edits a Next.js instrumentation file, which must
// declare a top-level function named register.
type InstrumentationFile struct {
	*File
}

// OpenInstrumentation loads the instrumentation file at path.
func OpenInstrumentation(path string) (*InstrumentationFile, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	return &InstrumentationFile{File: f}, nil
}

func (f *InstrumentationFile) register() (*parsed, functionDecl, error) {
	p, err := f.parse()
	if err != nil {
		return nil, functionDecl{}, err
	}
	fn, ok := p.findFunction(RegisterFunction)
	if !ok {
		return nil, functionDecl{}, f.anchorErr("no %s function", RegisterFunction)
	}
	return p, fn, nil
}

// CheckRegister fails with ErrAnchorNotFound when the register function is
// missing.
func (f *InstrumentationFile) CheckRegister() error {
	_, _, err := f.register()
	return err
}

// AddStatementsToRegister appends text to the body of register, indented
// to match the body.
func (f *InstrumentationFile) AddStatementsToRegister(text string) error {
	p, fn, err := f.register()
	if err != nil {
		return err
	}
	return f.addToFunction(p, fn, len(p.bodyStatements(fn)), text)
}
