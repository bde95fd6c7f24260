package main

// These constants hold the "long" description of a subcommand. These get printed when running `--help`, for example.
const (
	descriptionQASphere = `qasphere uploads automated test results to QA Sphere.

Results are matched to test cases through markers in the test names, e.g.
"PRJ-002: Login works". Configure the instance with QAS_URL and an API key
with QAS_TOKEN, either in the environment or in a .qaspherecli file.`

	descriptionJUnitUpload = `'qasphere junit-upload' uploads JUnit XML reports.

JUnit test functions may also carry hyphen-less markers such as
test_prj002_login, TestPRJ002Login or testLoginPRJ002.

Example use:

	qasphere junit-upload -r https://qas.eu1.qasphere.com/project/PRJ/run/23 build/test-results/*.xml

	qasphere junit-upload --attachments --run-name "Nightly {YYYY}-{MM}-{DD}" junit.xml`

	descriptionPlaywrightUpload = `'qasphere playwright-json-upload' uploads reports of the Playwright JSON reporter.

Besides markers in the test titles, a "test case" annotation with the URL of the
test case is recognized.

Example use:

	qasphere playwright-json-upload --attachments results.json`

	descriptionAllureUpload = `'qasphere allure-upload' uploads a directory of Allure results (*-result.json).

Besides markers in the test names, a tms link to the test case or a link named
like a marker (PRJ-002) is recognized.

Example use:

	qasphere allure-upload --project-code PRJ allure-results`

	descriptionXCResultUpload = `'qasphere xcresult-upload' uploads Xcode result bundles (.xcresult).

Bundles without a database are exported with xcrun xcresulttool first.

Example use:

	qasphere xcresult-upload --attachments build/Test.xcresult`
)
