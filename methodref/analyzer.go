// Package methodref decides whether a lambda expression can be replaced with
// an equivalent method reference and composes the reference text.
package methodref

import (
	"fmt"

	"github.com/heshanpadmasiri/lambdaref/diagnostics"
	"github.com/heshanpadmasiri/lambdaref/java"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("lambdaref.methodref")

// Options control how the analyzer treats resolver faults
type Options struct {
	// Strict re-raises resolver faults instead of reporting the lambda as not convertible
	Strict bool
}

// Analyzer checks lambdas for method reference convertibility. It is safe
// for concurrent use.
type Analyzer struct {
	resolver Resolver
	options  Options
	bindings *bindings
}

// NewAnalyzer creates an analyzer that resolves symbols through resolver
func NewAnalyzer(resolver Resolver, options Options) *Analyzer {
	return &Analyzer{
		resolver: resolver,
		options:  options,
		bindings: newBindings(),
	}
}

// Analyze decides whether lambda, whose target is the functional interface
// type functionalType, can be replaced with a method reference
func (a *Analyzer) Analyze(lambda Lambda, functionalType java.Type) (descriptor *Descriptor, ok bool) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, isAssertion := r.(*diagnostics.AssertionError); isAssertion || a.options.Strict {
			panic(r)
		}
		if err, isResolve := r.(*java.ResolveError); isResolve {
			log.Debugf("%s: not convertible: %s", lambda.Location(), err.Error())
		} else {
			log.Warningf("%s: analysis failed: %v", lambda.Location(), r)
		}
		descriptor, ok = nil, false
	}()
	return a.analyze(lambda, functionalType)
}

func (a *Analyzer) analyze(lambda Lambda, functionalType java.Type) (*Descriptor, bool) {
	form, ok := extractCallForm(lambda)
	if !ok {
		return nil, false
	}
	params := a.lambdaParameters(lambda, functionalType)
	d := &Descriptor{
		Call:           form,
		Lambda:         lambda,
		FunctionalType: functionalType,
	}
	switch call := form.(type) {
	case *MethodCall:
		member := a.resolver.ResolveCall(lambda.File, call.Node)
		if member == nil {
			log.Debugf("%s: call %s does not resolve", lambda.Location(), call.Name)
			return nil, false
		}
		qualifier, ok := a.methodCallQualifier(lambda, call, functionalType, params, member)
		if !ok {
			return nil, false
		}
		d.Qualifier, d.TypeArgs, d.Member = qualifier, call.TypeArgs, call.Name
	case *ConstructorCall:
		if call.Anonymous {
			return nil, false
		}
		qualifier, ok := a.constructorQualifier(lambda, call)
		if !ok {
			return nil, false
		}
		d.Qualifier, d.TypeArgs, d.Member, d.Constructor = qualifier, call.TypeArgs, "new", true
	default:
		diagnostics.Assert(false, "unexpected call form %T", form)
		return nil, false
	}

	target, err := a.resolveCandidate(lambda, d.String(), form, functionalType)
	if err != nil {
		log.Debugf("%s: %s", lambda.Location(), err.Error())
		return nil, false
	}
	if !a.passesParameters(lambda, params, form, target) {
		log.Debugf("%s: arguments of %s are not the lambda parameters in order", lambda.Location(), d.String())
		return nil, false
	}
	d.Target = target
	return d, true
}

// resolveCandidate resolves text as a method reference standing in for the
// call. The candidate is bound to the functional type only for the duration
// of the resolve.
func (a *Analyzer) resolveCandidate(lambda Lambda, text string, form CallForm, functionalType java.Type) (*java.Method, error) {
	ref, err := java.ParseMethodRef(text, lambda.File, form.Expression())
	if err != nil {
		return nil, err
	}
	defer ref.Close()
	release := a.bindings.bind(ref, functionalType)
	defer release()
	target, accessible := a.resolver.ResolveReference(ref, a.bindings)
	if target == nil {
		return nil, fmt.Errorf("%s does not resolve against %s", text, functionalType)
	}
	if !accessible {
		return nil, fmt.Errorf("%s resolves to inaccessible %s", text, target)
	}
	return target, nil
}

// lambdaParameters returns the lambda's parameters, typing inferred ones from
// the functional type when the lambda's context did not
func (a *Analyzer) lambdaParameters(lambda Lambda, functionalType java.Type) []*java.Variable {
	params := a.resolver.LambdaParameters(lambda.File, lambda.Node)
	sig, ok := a.resolver.FunctionalMethod(functionalType)
	if !ok {
		return params
	}
	for i, p := range params {
		if !p.Type.Known() && i < len(sig.Params) {
			p.Type = sig.Params[i]
		}
	}
	return params
}
