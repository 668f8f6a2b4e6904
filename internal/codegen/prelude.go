package codegen

// prelude holds the coercion helpers every generated script starts with. They
// mirror the value package's conversion rules. Tabs mark one indent level.
const prelude = `import json


def _num(x):
	if x is None:
		return 0
	if isinstance(x, bool):
		return 1 if x else 0
	if isinstance(x, (int, float)):
		return x
	if isinstance(x, str):
		try:
			return float(x.strip())
		except ValueError:
			return 0
	if isinstance(x, dict):
		return _num(x.get('value'))
	return 0


def _bool(x):
	if x is None:
		return False
	if isinstance(x, bool):
		return x
	if isinstance(x, (int, float)):
		return x != 0
	if isinstance(x, str):
		return x.strip().lower() in ('1', 't', 'true', 'y', 'yes', 'on')
	if isinstance(x, dict):
		return _bool(x.get('value'))
	return False


def _text(x):
	if x is None:
		return ''
	if isinstance(x, bool):
		return 'true' if x else 'false'
	if isinstance(x, (int, float)):
		if float(x).is_integer() and abs(x) < 1e15:
			return str(int(x))
		return repr(float(x))
	if isinstance(x, dict):
		return json.dumps(x, sort_keys=True, separators=(',', ':'))
	return str(x)


def _rec(x):
	if x is None:
		return {}
	if isinstance(x, dict):
		return x
	return {'value': x}


def _bool_or_true(x, seen):
	return _bool(x) if seen else True


def _coalesce(x, default):
	return default if x is None else _num(x)


def _for_active(i, start, end, step):
	v = start + i * step
	return v < end if step > 0 else v > end
`
